package queries

import (
	"context"
	"log/slog"
	"strings"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/ports"
)

type ActivePoolView struct {
	Pool entities.Pool
	Rank []entities.RankEntry
}

type GetActivePoolUseCase struct {
	Registry  ports.GroupRegistry
	RankCount int
	Logger    *slog.Logger
}

func (u GetActivePoolUseCase) Execute(ctx context.Context, groupID string) (ActivePoolView, error) {
	if strings.TrimSpace(groupID) == "" {
		return ActivePoolView{}, domainerrors.ErrInvalidSeedRequest
	}

	pool, exists, err := u.Registry.ActivePool(ctx, groupID)
	if err != nil {
		return ActivePoolView{}, err
	}
	if !exists {
		return ActivePoolView{}, domainerrors.ErrPoolNotFound
	}

	rankCount := u.RankCount
	if rankCount <= 0 {
		rankCount = 10
	}
	return ActivePoolView{
		Pool: pool,
		Rank: pool.BuildRank(rankCount),
	}, nil
}
