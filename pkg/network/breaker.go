package network

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/logging"
)

// errSendBufferFull is the failure a slow pilot produces when a snapshot
// finds the outbound queue full.
var errSendBufferFull = errors.New("send buffer full")

// newSnapshotBreaker creates the breaker guarding a session's snapshot
// stream. After MaxConsecutiveFails dropped snapshots it opens and the
// session stops encoding snapshots until Timeout has passed; MaxRequests
// probes are then let through to test whether the pilot has caught up.
func newSnapshotBreaker(ctx context.Context, name string, cfg config.BreakerConfig, logger *logging.Logger) *gobreaker.CircuitBreaker {
	maxFails := cfg.MaxConsecutiveFails
	if maxFails == 0 {
		maxFails = 1
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval.Std(),
		Timeout:     cfg.Timeout.Std(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(ctx, "snapshot breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
