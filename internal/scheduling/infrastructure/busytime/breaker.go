package busytime

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// BreakerProvider wraps a busy-window provider with a circuit breaker
// so a flapping upstream (typically CalDAV) fails fast instead of
// stalling every scheduling request.
type BreakerProvider struct {
	inner   domain.BusyWindowProvider
	breaker *gobreaker.CircuitBreaker[[]domain.BusyWindow]
}

// NewBreakerProvider wraps a provider with a named circuit breaker.
func NewBreakerProvider(name string, inner domain.BusyWindowProvider, logger *slog.Logger) *BreakerProvider {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("busy-window circuit breaker state changed",
				"provider", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[[]domain.BusyWindow](settings),
	}
}

// BusyWindows delegates to the inner provider through the breaker.
func (b *BreakerProvider) BusyWindows(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.BusyWindow, error) {
	return b.breaker.Execute(func() ([]domain.BusyWindow, error) {
		return b.inner.BusyWindows(ctx, userID, from, to)
	})
}
