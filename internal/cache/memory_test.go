package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

func newTestMemory[V any](t *testing.T, size int) *Memory[V] {
	t.Helper()
	m, err := NewMemory[V](size)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return m
}

func TestMemory_SetThenGet(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[[]string](t, 10)

	want := []string{"Sofa", "Grey"}
	m.Set(ctx, "grey sofa", want, time.Hour)

	got, ok := m.Get(ctx, "grey sofa")
	if !ok {
		t.Fatal("expected hit")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMemory_ZeroTTLMisses(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[string](t, 10)

	m.Set(ctx, "test", "value", 0)
	if _, ok := m.Get(ctx, "test"); ok {
		t.Fatal("TTL=0 entry should miss")
	}
}

func TestMemory_KeyNormalization(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[string](t, 10)

	m.Set(ctx, "  Test  ", "value", time.Hour)
	for _, key := range []string{"test", "TEST", " test", "Test\n"} {
		if v, ok := m.Get(ctx, key); !ok || v != "value" {
			t.Errorf("Get(%q) = %q, %v; want hit", key, v, ok)
		}
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMemory_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[string](t, 10)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Set(ctx, "q", "v", time.Minute)

	now = now.Add(59 * time.Second)
	if _, ok := m.Get(ctx, "q"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(time.Second)
	if _, ok := m.Get(ctx, "q"); ok {
		t.Fatal("expected miss at expiry")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry should be removed on read, Len() = %d", m.Len())
	}
}

func TestMemory_OverwriteRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[string](t, 10)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Set(ctx, "q", "old", time.Minute)
	now = now.Add(50 * time.Second)
	m.Set(ctx, "q", "new", time.Minute)
	now = now.Add(50 * time.Second)

	if v, ok := m.Get(ctx, "q"); !ok || v != "new" {
		t.Errorf("Get = %q, %v; want new", v, ok)
	}
}

func TestMemory_BoundedSize(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[int](t, 2)

	m.Set(ctx, "a", 1, time.Hour)
	m.Set(ctx, "b", 2, time.Hour)
	m.Set(ctx, "c", 3, time.Hour)

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[int](t, 10)

	m.Set(ctx, "a", 1, time.Hour)
	m.Clear(ctx)
	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory[[]int](t, 100)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", i%10)
				m.Set(ctx, key, []int{w, i}, time.Minute)
				if v, ok := m.Get(ctx, key); ok && len(v) != 2 {
					t.Errorf("half-written entry: %v", v)
				}
			}
		}()
	}
	wg.Wait()
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Store[string] = Nop[string]{}
	c.Set(ctx, "k", "v", time.Hour)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Nop should never hit")
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  Modern SOFA \t"); got != "modern sofa" {
		t.Errorf("NormalizeKey = %q", got)
	}
}
