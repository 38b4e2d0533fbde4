package blob

import (
	"context"
	"errors"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerStore guards a BlobStore with a circuit breaker.
// While the breaker is open calls fail with gobreaker.ErrOpenState without reaching the wrapped store.
type BreakerStore struct {
	next BlobStore
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreakerStore wraps next with a breaker configured from cfg.
func NewBreakerStore(next BlobStore, cfg config.CircuitBreakerConfig) *BreakerStore {
	st := gobreaker.Settings{
		Name:        "blob-store-cb",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total >= cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			// context cancellation is not a store failure
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](st),
	}
}

// Put forwards to the wrapped store through the breaker.
func (b *BreakerStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.next.Put(ctx, key, data, contentType)
	})
}

// Delete forwards to the wrapped store through the breaker.
func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (string, error) {
		return "", b.next.Delete(ctx, key)
	})
	return err
}

// State reports the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}
