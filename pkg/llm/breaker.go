package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned without calling the backend while its breaker
// is open.
var ErrUnavailable = errors.New("llm: backend unavailable")

type breakerProvider struct {
	next LLMProvider
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker trips after five consecutive failures and probes the backend
// again after thirty seconds. Refusals and caller cancellations do not count
// as failures.
func WithBreaker(name string, next LLMProvider) LLMProvider {
	return &breakerProvider{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "llm-" + name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrBlocked) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

func (b *breakerProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return b.call(func() (string, error) { return b.next.Chat(ctx, history, options...) })
}

func (b *breakerProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return b.call(func() (string, error) { return b.next.Generate(ctx, prompt, options...) })
}

func (b *breakerProvider) call(fn func() (string, error)) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		text, err := fn()
		return text, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", errors.Join(ErrUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
