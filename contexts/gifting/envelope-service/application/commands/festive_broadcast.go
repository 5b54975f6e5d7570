package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "redpacket/contexts/gifting/envelope-service/application"
	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/domain/services"
	"redpacket/contexts/gifting/envelope-service/ports"
)

// FestiveSeederID marks house-funded festive pools. They bypass the ledger
// on both the debit and the remainder-credit side.
const FestiveSeederID = "festive"

const defaultGreeting = "Good fortune and great joy"

type FestiveBroadcastCommand struct {
	Amount     int64
	ShareCount int
	Greeting   string
	GroupIDs   []string
}

type FestiveBroadcastResult struct {
	RoundID    string
	Seeded     []string
	Skipped    []string
	RotatedOut []entities.SettlementResult
}

// FestiveBroadcastUseCase starts a fresh festive round across the target
// groups, force-settling any instance of a previous round it finds.
type FestiveBroadcastUseCase struct {
	Registry  ports.GroupRegistry
	Festive   ports.FestiveRegistry
	Scheduler ports.TimeoutScheduler
	Settler   application.Settler
	Announcer application.Announcer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	RoundTTL  time.Duration
	HouseName string
	Logger    *slog.Logger
}

func (u FestiveBroadcastUseCase) Execute(ctx context.Context, cmd FestiveBroadcastCommand) (FestiveBroadcastResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Amount <= 0 || cmd.ShareCount <= 0 || int64(cmd.ShareCount) > cmd.Amount {
		return FestiveBroadcastResult{}, domainerrors.ErrInvalidAllocation
	}
	if len(cmd.GroupIDs) == 0 {
		return FestiveBroadcastResult{}, domainerrors.ErrInvalidSeedRequest
	}

	greeting := cmd.Greeting
	if greeting == "" {
		greeting = defaultGreeting
	}
	houseName := u.HouseName
	if houseName == "" {
		houseName = "redpacket"
	}

	now := u.now()
	roundID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return FestiveBroadcastResult{}, err
	}
	if err := u.Festive.StartRound(ctx, roundID, now); err != nil {
		return FestiveBroadcastResult{}, err
	}

	result := FestiveBroadcastResult{RoundID: roundID}
	for _, groupID := range cmd.GroupIDs {
		// Rotate out the previous round's instance first: settle, announce,
		// cancel its expiry timer, release its registry entry.
		old, settled, err := u.Settler.SettleGroup(ctx, groupID, true, now)
		if err != nil {
			return result, err
		}
		if settled {
			result.RotatedOut = append(result.RotatedOut, old)
		}

		shares, err := services.AllocateShares(cmd.Amount, cmd.ShareCount)
		if err != nil {
			return result, err
		}
		poolID, err := u.IDGen.NewID(ctx)
		if err != nil {
			return result, err
		}
		pool, err := entities.NewPool(
			poolID,
			groupID,
			FestiveSeederID,
			houseName,
			fmt.Sprintf("%s's festive red packet", houseName),
			cmd.Amount,
			shares,
			"",
			roundID,
			now,
		)
		if err != nil {
			return result, err
		}

		if err := u.Registry.InstallPool(ctx, groupID, pool); err != nil {
			if errors.Is(err, domainerrors.ErrPoolConflict) {
				// A member's own pool is still live here; leave it alone.
				result.Skipped = append(result.Skipped, groupID)
				logger.Warn("festive seed skipped",
					"event", "gifting_festive_seed_skipped",
					"module", "gifting/envelope-service",
					"layer", "application",
					"group_id", groupID,
					"round_id", roundID,
				)
				continue
			}
			return result, err
		}
		if err := u.Festive.RegisterInstance(ctx, roundID, groupID); err != nil {
			return result, err
		}

		targetGroup := groupID
		u.Scheduler.ScheduleAt(application.FestiveTimeoutKey(targetGroup), now.Add(u.roundTTL()), func() {
			_, _, _ = u.Settler.SettleGroup(context.Background(), targetGroup, true, u.Settler.Now())
		})

		u.Announcer.Announce(ctx, application.EventTypeFestiveSeeded, ports.Announcement{
			GroupID: groupID,
			PoolID:  poolID,
			Text: fmt.Sprintf("%s seeded a festive red packet (%s): %d in %d shares",
				houseName, greeting, cmd.Amount, cmd.ShareCount),
		}, now)
		result.Seeded = append(result.Seeded, groupID)
	}

	logger.Info("festive round broadcast",
		"event", "gifting_festive_broadcast",
		"module", "gifting/envelope-service",
		"layer", "application",
		"round_id", roundID,
		"amount", cmd.Amount,
		"shares", cmd.ShareCount,
		"seeded_groups", len(result.Seeded),
		"skipped_groups", len(result.Skipped),
		"rotated_out", len(result.RotatedOut),
	)
	return result, nil
}

func (u FestiveBroadcastUseCase) roundTTL() time.Duration {
	if u.RoundTTL <= 0 {
		return 24 * time.Hour
	}
	return u.RoundTTL
}

func (u FestiveBroadcastUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
