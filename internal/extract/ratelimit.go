package extract

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited paces calls to an underlying Backend.
type Limited struct {
	next    Backend
	limiter *rate.Limiter
}

// NewLimited allows requestsPerMinute calls to next, with bursts of up to burst.
func NewLimited(next Backend, requestsPerMinute, burst int) *Limited {
	if burst <= 0 {
		burst = 1
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

func (l *Limited) Complete(ctx context.Context, model, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", &BackendError{Kind: KindTransient, Model: model, Message: "rate limiter wait", Err: err}
	}
	return l.next.Complete(ctx, model, prompt)
}
