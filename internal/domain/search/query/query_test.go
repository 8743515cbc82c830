package query

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/kailas-cloud/furnsearch/internal/domain"
)

func TestValidateText(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := ValidateText(in); !errors.Is(err, domain.ErrEmptyQuery) {
			t.Errorf("ValidateText(%q) err = %v, want ErrEmptyQuery", in, err)
		}
	}
	got, err := ValidateText("  grey sofa ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "grey sofa" {
		t.Errorf("got %q, want trimmed", got)
	}
}

func TestValidateImage(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

	tests := []struct {
		name    string
		data    []byte
		max     int
		want    ImageFormat
		wantErr bool
	}{
		{"jpeg", jpeg, 0, JPEG, false},
		{"png", png, 0, PNG, false},
		{"empty", nil, 0, "", true},
		{"gif", []byte("GIF89a"), 0, "", true},
		{"truncated png", png[:4], 0, "", true},
		{"oversized", jpeg, 3, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateImage(tc.data, tc.max)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidImage) {
					t.Fatalf("err = %v, want ErrInvalidImage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("format = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateImage_DefaultLimit(t *testing.T) {
	data := make([]byte, DefaultMaxImageBytes+1)
	copy(data, []byte{0xFF, 0xD8, 0xFF})
	if _, err := ValidateImage(data, 0); !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("err = %v, want ErrInvalidImage", err)
	}
}

func TestDecodeBase64Image(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0x01}
	enc := base64.StdEncoding.EncodeToString(raw)

	for _, in := range []string{enc, "data:image/jpeg;base64," + enc, "  " + enc + "\n"} {
		got, err := DecodeBase64Image(in)
		if err != nil {
			t.Fatalf("DecodeBase64Image(%q): %v", in, err)
		}
		if string(got) != string(raw) {
			t.Errorf("decoded %v, want %v", got, raw)
		}
	}

	for _, in := range []string{"", "not base64!!"} {
		if _, err := DecodeBase64Image(in); !errors.Is(err, domain.ErrInvalidImage) {
			t.Errorf("DecodeBase64Image(%q) err = %v, want ErrInvalidImage", in, err)
		}
	}
}
