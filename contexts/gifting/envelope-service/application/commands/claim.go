package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "redpacket/contexts/gifting/envelope-service/application"
	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/ports"
)

type ClaimCommand struct {
	GroupID string
	UserID  string
}

// ClaimedShare is one successful take. A group currently holds at most one
// active pool, so the slice carries at most one entry today.
type ClaimedShare struct {
	PoolID     string
	PoolName   string
	SeederID   string
	SeederName string
	Amount     int64
	Remaining  int
}

type ClaimResult struct {
	Claims      []ClaimedShare
	Settlements []entities.SettlementResult
}

// ClaimUseCase resolves the group's active pool, enforces the festive
// one-claim-per-round rule, takes a share, and settles on exhaustion.
type ClaimUseCase struct {
	Registry  ports.GroupRegistry
	Festive   ports.FestiveRegistry
	Settler   application.Settler
	Announcer application.Announcer
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u ClaimUseCase) Execute(ctx context.Context, cmd ClaimCommand) (ClaimResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.GroupID) == "" || strings.TrimSpace(cmd.UserID) == "" {
		return ClaimResult{}, domainerrors.ErrInvalidSeedRequest
	}

	now := u.now()
	active, exists, err := u.Registry.ActivePool(ctx, cmd.GroupID)
	if err != nil {
		return ClaimResult{}, err
	}
	if !exists {
		// Nothing to claim is a normal empty outcome, not a failure.
		return ClaimResult{}, nil
	}

	// Festive pools additionally consume the user's single claim for the
	// round, shared across every group the round was broadcast to.
	reservedRound := ""
	if active.IsFestive() {
		granted, err := u.Festive.TryClaimRound(ctx, active.FestiveRoundID, cmd.UserID)
		switch {
		case errors.Is(err, domainerrors.ErrRoundNotFound):
			// Round already torn down; the pool is about to be rotated out
			// and the cross-group rule has nothing left to enforce.
		case err != nil:
			return ClaimResult{}, err
		case !granted:
			return ClaimResult{}, domainerrors.ErrRoundClaimed
		default:
			reservedRound = active.FestiveRoundID
		}
	}

	outcome, err := u.Registry.ClaimShare(ctx, cmd.GroupID, cmd.UserID, now)
	if err != nil {
		// Give the round claim back when the share claim lost the race, so
		// the user is not locked out of the festive round for nothing.
		if reservedRound != "" {
			if releaseErr := u.Festive.ReleaseRoundClaim(ctx, reservedRound, cmd.UserID); releaseErr != nil {
				logger.Warn("festive claim release failed",
					"event", "gifting_round_claim_release_failed",
					"module", "gifting/envelope-service",
					"layer", "application",
					"round_id", reservedRound,
					"user_id", cmd.UserID,
					"error", releaseErr.Error(),
				)
			}
		}
		if errors.Is(err, domainerrors.ErrPoolNotFound) {
			return ClaimResult{}, nil
		}
		return ClaimResult{}, err
	}

	u.Announcer.Announce(ctx, application.EventTypeShareClaimed, ports.Announcement{
		GroupID:       cmd.GroupID,
		PoolID:        outcome.Pool.PoolID,
		MentionUserID: cmd.UserID,
		Text: fmt.Sprintf("%s opened %s and got %d (%d shares left)",
			cmd.UserID, outcome.Pool.Name, outcome.Amount, outcome.RemainingShares),
	}, now)

	logger.Info("share claimed",
		"event", "gifting_share_claimed",
		"module", "gifting/envelope-service",
		"layer", "application",
		"group_id", cmd.GroupID,
		"pool_id", outcome.Pool.PoolID,
		"user_id", cmd.UserID,
		"amount", outcome.Amount,
		"remaining_shares", outcome.RemainingShares,
	)

	result := ClaimResult{
		Claims: []ClaimedShare{{
			PoolID:     outcome.Pool.PoolID,
			PoolName:   outcome.Pool.Name,
			SeederID:   outcome.Pool.SeederID,
			SeederName: outcome.Pool.SeederName,
			Amount:     outcome.Amount,
			Remaining:  outcome.RemainingShares,
		}},
	}

	if outcome.Exhausted {
		settlement, settled, err := u.Settler.SettleGroup(ctx, cmd.GroupID, false, now)
		if err != nil {
			return result, err
		}
		if settled {
			result.Settlements = append(result.Settlements, settlement)
		}
	}
	return result, nil
}

func (u ClaimUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
