package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/ports"
)

// Settler runs the shared settle-and-announce path used by claim
// exhaustion, the timeout callback, manual return, and festive rotation.
// Whoever reaches the registry first wins; losers observe the settle guard
// and report settled=false with no side effects.
type Settler struct {
	Registry  ports.GroupRegistry
	Festive   ports.FestiveRegistry
	Ledger    ports.LedgerGateway
	Archive   ports.SettlementArchive
	Scheduler ports.TimeoutScheduler
	Announcer Announcer
	Clock     ports.Clock
	RankCount int
	Currency  string
	Logger    *slog.Logger
}

func (s Settler) SettleGroup(
	ctx context.Context,
	groupID string,
	onlyFestive bool,
	now time.Time,
) (entities.SettlementResult, bool, error) {
	logger := ResolveLogger(s.Logger)

	result, err := s.Registry.SettleActivePool(ctx, groupID, onlyFestive, now)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPoolNotFound) || errors.Is(err, domainerrors.ErrAlreadySettled) {
			return entities.SettlementResult{}, false, nil
		}
		logger.Error("settlement failed",
			"event", "gifting_settle_failed",
			"module", "gifting/envelope-service",
			"layer", "application",
			"group_id", groupID,
			"error", err.Error(),
		)
		return entities.SettlementResult{}, false, err
	}

	// The pool lock is released; cancellation and I/O happen out here.
	if result.FestiveRoundID != "" {
		s.cancel(FestiveTimeoutKey(groupID))
		if s.Festive != nil {
			if _, err := s.Festive.UnregisterInstance(ctx, result.FestiveRoundID, groupID); err != nil {
				logger.Warn("festive instance unregister failed",
					"event", "gifting_festive_unregister_failed",
					"module", "gifting/envelope-service",
					"layer", "application",
					"group_id", groupID,
					"round_id", result.FestiveRoundID,
					"error", err.Error(),
				)
			}
		}
	} else {
		s.cancel(PoolTimeoutKey(groupID))
		if result.Returned > 0 && s.Ledger != nil {
			if err := s.Ledger.Credit(ctx, result.SeederID, result.Returned, s.Currency); err != nil {
				logger.Error("remainder credit failed",
					"event", "gifting_settle_credit_failed",
					"module", "gifting/envelope-service",
					"layer", "application",
					"group_id", groupID,
					"pool_id", result.PoolID,
					"seeder_id", result.SeederID,
					"returned", result.Returned,
					"error", err.Error(),
				)
			}
		}
	}

	if s.Archive != nil {
		if err := s.Archive.RecordSettlement(ctx, result); err != nil {
			logger.Warn("settlement archive write failed",
				"event", "gifting_settle_archive_failed",
				"module", "gifting/envelope-service",
				"layer", "application",
				"pool_id", result.PoolID,
				"error", err.Error(),
			)
		}
	}

	s.Announcer.Announce(ctx, EventTypePoolSettled, ports.Announcement{
		GroupID: groupID,
		PoolID:  result.PoolID,
		Text:    RenderSettlementText(result, s.RankCount),
	}, now)

	logger.Info("pool settled",
		"event", "gifting_pool_settled",
		"module", "gifting/envelope-service",
		"layer", "application",
		"group_id", groupID,
		"pool_id", result.PoolID,
		"total_claimed", result.TotalClaimed,
		"returned", result.Returned,
		"claimants", len(result.Claimants),
		"festive", result.FestiveRoundID != "",
	)
	return result, true, nil
}

func (s Settler) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Settler) cancel(key string) {
	if s.Scheduler != nil {
		s.Scheduler.Cancel(key)
	}
}
