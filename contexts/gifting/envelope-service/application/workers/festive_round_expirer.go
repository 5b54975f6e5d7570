package workers

import (
	"context"
	"log/slog"
	"time"

	application "redpacket/contexts/gifting/envelope-service/application"
	"redpacket/contexts/gifting/envelope-service/ports"
)

// FestiveRoundExpirer sweeps festive round records whose start time crossed
// the round TTL. Pool timeouts settle the pools themselves; this worker only
// drops stale round bookkeeping left behind when a process restart lost the
// in-memory timers.
type FestiveRoundExpirer struct {
	Festive  ports.FestiveRegistry
	Clock    ports.Clock
	RoundTTL time.Duration
	Logger   *slog.Logger
}

func (e FestiveRoundExpirer) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(e.Logger)
	now := time.Now().UTC()
	if e.Clock != nil {
		now = e.Clock.Now().UTC()
	}
	ttl := e.RoundTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	expired, err := e.Festive.ExpireRounds(ctx, now.Add(-ttl))
	if err != nil {
		logger.Error("festive round expiry sweep failed",
			"event", "gifting_festive_expiry_failed",
			"module", "gifting/envelope-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if expired > 0 {
		logger.Info("festive round expiry sweep completed",
			"event", "gifting_festive_expiry_completed",
			"module", "gifting/envelope-service",
			"layer", "worker",
			"expired_count", expired,
		)
	}
	return nil
}
