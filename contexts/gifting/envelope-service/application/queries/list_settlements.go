package queries

import (
	"context"
	"log/slog"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	"redpacket/contexts/gifting/envelope-service/ports"
)

const (
	defaultSettlementLimit = 20
	maxSettlementLimit     = 100
)

type ListSettlementsQuery struct {
	GroupID string
	Limit   int
	Offset  int
}

type ListSettlementsUseCase struct {
	Archive ports.SettlementArchive
	Logger  *slog.Logger
}

func (u ListSettlementsUseCase) Execute(ctx context.Context, query ListSettlementsQuery) ([]entities.SettlementResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSettlementLimit
	}
	if limit > maxSettlementLimit {
		limit = maxSettlementLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	results, err := u.Archive.ListSettlements(ctx, query.GroupID, limit, offset)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []entities.SettlementResult{}
	}
	return results, nil
}
