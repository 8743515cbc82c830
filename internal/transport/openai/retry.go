package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	retry "github.com/sethvargo/go-retry"
)

// DefaultRetryBase is the first backoff interval between provider attempts.
const DefaultRetryBase = 200 * time.Millisecond

// RetryPolicy bounds provider retries. Zero Retries means a single attempt.
type RetryPolicy struct {
	Retries int
	Base    time.Duration
}

func (p RetryPolicy) do(ctx context.Context, fn func(ctx context.Context) error) error {
	base := p.Base
	if base <= 0 {
		base = DefaultRetryBase
	}
	retries := max(p.Retries, 0)

	b := retry.WithMaxRetries(uint64(retries), retry.NewExponential(base))
	return retry.Do(ctx, b, func(ctx context.Context) error { //nolint:wrapcheck // fn errors are wrapped by callers
		err := fn(ctx)
		if err != nil && isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// isRetryable reports whether a provider error is worth another attempt:
// rate limits, server errors and transport failures are; client errors and
// cancellation are not.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
