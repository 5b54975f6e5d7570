package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "redpacket/contexts/gifting/envelope-service/application"
	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/domain/services"
	"redpacket/contexts/gifting/envelope-service/ports"
)

const defaultShareCount = 5

type SeedPoolCommand struct {
	GroupID    string
	UserID     string
	UserName   string
	Amount     int64
	ShareCount int
	AssigneeID string
}

type SeedPoolResult struct {
	Pool entities.Pool
}

// SeedPoolUseCase debits the seeder, partitions the amount, installs the
// pool as the group's single active pool and arms its timeout.
type SeedPoolUseCase struct {
	Registry  ports.GroupRegistry
	Ledger    ports.LedgerGateway
	Scheduler ports.TimeoutScheduler
	Settler   application.Settler
	Announcer application.Announcer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Timeout   time.Duration
	Interval  time.Duration
	Currency  string
	Logger    *slog.Logger
}

func (u SeedPoolUseCase) Execute(ctx context.Context, cmd SeedPoolCommand) (SeedPoolResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.GroupID) == "" || strings.TrimSpace(cmd.UserID) == "" {
		return SeedPoolResult{}, domainerrors.ErrInvalidSeedRequest
	}
	if cmd.Amount <= 0 {
		return SeedPoolResult{}, domainerrors.ErrInvalidAllocation
	}

	shareCount := cmd.ShareCount
	if shareCount <= 0 {
		shareCount = defaultShareCount
	}
	// A targeted gift is always a single share.
	if cmd.AssigneeID != "" {
		shareCount = 1
	}

	now := u.now()
	active, exists, err := u.Registry.ActivePool(ctx, cmd.GroupID)
	if err != nil {
		return SeedPoolResult{}, err
	}
	if exists {
		if active.SeederID != cmd.UserID {
			return SeedPoolResult{}, domainerrors.ErrPoolConflict
		}
		cooldownEnds := active.CreatedAt.Add(u.interval())
		if now.Before(cooldownEnds) {
			remaining := cooldownEnds.Sub(now).Round(time.Second)
			return SeedPoolResult{}, fmt.Errorf(
				"%w: %d shares unclaimed, retry in %ds",
				domainerrors.ErrCooldownActive,
				len(active.Shares),
				int(remaining.Seconds()),
			)
		}
		// The caller's stale pool has outlived the interval; settle it so
		// the new one can take its place.
		if _, _, err := u.Settler.SettleGroup(ctx, cmd.GroupID, false, now); err != nil {
			return SeedPoolResult{}, err
		}
	}

	if err := u.Ledger.CheckAndReserve(ctx, cmd.UserID, cmd.Amount, u.Currency); err != nil {
		logger.Warn("seed rejected by ledger",
			"event", "gifting_seed_ledger_rejected",
			"module", "gifting/envelope-service",
			"layer", "application",
			"group_id", cmd.GroupID,
			"user_id", cmd.UserID,
			"amount", cmd.Amount,
			"error", err.Error(),
		)
		return SeedPoolResult{}, err
	}

	shares, err := services.AllocateShares(cmd.Amount, shareCount)
	if err != nil {
		u.refund(ctx, cmd.UserID, cmd.Amount)
		return SeedPoolResult{}, err
	}

	poolID, err := u.IDGen.NewID(ctx)
	if err != nil {
		u.refund(ctx, cmd.UserID, cmd.Amount)
		return SeedPoolResult{}, err
	}
	seederName := strings.TrimSpace(cmd.UserName)
	if seederName == "" {
		seederName = cmd.UserID
	}
	pool, err := entities.NewPool(
		poolID,
		cmd.GroupID,
		cmd.UserID,
		seederName,
		fmt.Sprintf("%s's red packet", seederName),
		cmd.Amount,
		shares,
		cmd.AssigneeID,
		"",
		now,
	)
	if err != nil {
		u.refund(ctx, cmd.UserID, cmd.Amount)
		return SeedPoolResult{}, err
	}

	if err := u.Registry.InstallPool(ctx, cmd.GroupID, pool); err != nil {
		u.refund(ctx, cmd.UserID, cmd.Amount)
		return SeedPoolResult{}, err
	}

	groupID := cmd.GroupID
	u.Scheduler.ScheduleAt(application.PoolTimeoutKey(groupID), now.Add(u.timeout()), func() {
		_, _, _ = u.Settler.SettleGroup(context.Background(), groupID, false, u.Settler.Now())
	})

	text := fmt.Sprintf("%s seeded a red packet: %d in %d shares", seederName, cmd.Amount, shareCount)
	u.Announcer.Announce(ctx, application.EventTypePoolSeeded, ports.Announcement{
		GroupID:       cmd.GroupID,
		PoolID:        pool.PoolID,
		Text:          text,
		MentionUserID: cmd.AssigneeID,
	}, now)

	logger.Info("pool seeded",
		"event", "gifting_pool_seeded",
		"module", "gifting/envelope-service",
		"layer", "application",
		"group_id", cmd.GroupID,
		"pool_id", pool.PoolID,
		"seeder_id", cmd.UserID,
		"amount", cmd.Amount,
		"shares", shareCount,
		"assignee_id", cmd.AssigneeID,
	)
	return SeedPoolResult{Pool: pool}, nil
}

// refund undoes the reservation when seeding fails after the debit.
func (u SeedPoolUseCase) refund(ctx context.Context, userID string, amount int64) {
	if err := u.Ledger.Credit(ctx, userID, amount, u.Currency); err != nil {
		application.ResolveLogger(u.Logger).Error("seed refund failed",
			"event", "gifting_seed_refund_failed",
			"module", "gifting/envelope-service",
			"layer", "application",
			"user_id", userID,
			"amount", amount,
			"error", err.Error(),
		)
	}
}

func (u SeedPoolUseCase) timeout() time.Duration {
	if u.Timeout <= 0 {
		return 600 * time.Second
	}
	return u.Timeout
}

func (u SeedPoolUseCase) interval() time.Duration {
	if u.Interval <= 0 {
		return 60 * time.Second
	}
	return u.Interval
}

func (u SeedPoolUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
