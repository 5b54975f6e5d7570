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
	"redpacket/contexts/gifting/envelope-service/ports"
)

type ReturnPoolCommand struct {
	GroupID string
	UserID  string
}

type ReturnPoolResult struct {
	Settlement entities.SettlementResult
}

// ReturnPoolUseCase lets a seeder reclaim their own pool once the
// configured interval has elapsed since it was seeded.
type ReturnPoolUseCase struct {
	Registry ports.GroupRegistry
	Settler  application.Settler
	Clock    ports.Clock
	Interval time.Duration
	Logger   *slog.Logger
}

func (u ReturnPoolUseCase) Execute(ctx context.Context, cmd ReturnPoolCommand) (ReturnPoolResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.GroupID) == "" || strings.TrimSpace(cmd.UserID) == "" {
		return ReturnPoolResult{}, domainerrors.ErrInvalidSeedRequest
	}

	now := u.now()
	active, exists, err := u.Registry.ActivePool(ctx, cmd.GroupID)
	if err != nil {
		return ReturnPoolResult{}, err
	}
	if !exists || active.SeederID != cmd.UserID || active.IsFestive() {
		return ReturnPoolResult{}, domainerrors.ErrPoolNotFound
	}

	returnableAt := active.CreatedAt.Add(u.interval())
	if now.Before(returnableAt) {
		remaining := int(returnableAt.Sub(now).Round(time.Second).Seconds())
		return ReturnPoolResult{}, fmt.Errorf("%w: try again in %ds", domainerrors.ErrTooEarly, remaining)
	}

	settlement, settled, err := u.Settler.SettleGroup(ctx, cmd.GroupID, false, now)
	if err != nil {
		return ReturnPoolResult{}, err
	}
	if !settled {
		// A claim or the timeout settled it between the snapshot and here.
		return ReturnPoolResult{}, domainerrors.ErrPoolNotFound
	}

	logger.Info("pool returned",
		"event", "gifting_pool_returned",
		"module", "gifting/envelope-service",
		"layer", "application",
		"group_id", cmd.GroupID,
		"pool_id", settlement.PoolID,
		"seeder_id", cmd.UserID,
		"returned", settlement.Returned,
	)
	return ReturnPoolResult{Settlement: settlement}, nil
}

func (u ReturnPoolUseCase) interval() time.Duration {
	if u.Interval <= 0 {
		return 60 * time.Second
	}
	return u.Interval
}

func (u ReturnPoolUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
