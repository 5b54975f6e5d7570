package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"redpacket/contexts/gifting/envelope-service/application/commands"
	"redpacket/contexts/gifting/envelope-service/application/queries"
	"redpacket/contexts/gifting/envelope-service/domain/entities"
	httptransport "redpacket/contexts/gifting/envelope-service/transport/http"
)

type Handler struct {
	Seed        commands.SeedPoolUseCase
	Claims      commands.ClaimUseCase
	Returns     commands.ReturnPoolUseCase
	Festive     commands.FestiveBroadcastUseCase
	ActivePool  queries.GetActivePoolUseCase
	Settlements queries.ListSettlementsUseCase
	Logger      *slog.Logger
}

func (h Handler) SeedPoolHandler(
	ctx context.Context,
	groupID string,
	userID string,
	req httptransport.SeedPoolRequest,
) (httptransport.PoolResponse, error) {
	result, err := h.Seed.Execute(ctx, commands.SeedPoolCommand{
		GroupID:    groupID,
		UserID:     userID,
		UserName:   req.UserName,
		Amount:     req.Amount,
		ShareCount: req.ShareCount,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		return httptransport.PoolResponse{}, err
	}
	return mapPool(result.Pool), nil
}

func (h Handler) ClaimHandler(ctx context.Context, groupID string, userID string) (httptransport.ClaimResponse, error) {
	result, err := h.Claims.Execute(ctx, commands.ClaimCommand{
		GroupID: groupID,
		UserID:  userID,
	})
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	claims := make([]httptransport.ClaimedShareItem, 0, len(result.Claims))
	for _, claim := range result.Claims {
		claims = append(claims, httptransport.ClaimedShareItem{
			PoolID:     claim.PoolID,
			PoolName:   claim.PoolName,
			SeederID:   claim.SeederID,
			SeederName: claim.SeederName,
			Amount:     claim.Amount,
			Remaining:  claim.Remaining,
		})
	}
	return httptransport.ClaimResponse{
		Claims:      claims,
		Settlements: mapSettlements(result.Settlements),
	}, nil
}

func (h Handler) ReturnPoolHandler(ctx context.Context, groupID string, userID string) (httptransport.SettlementResponse, error) {
	result, err := h.Returns.Execute(ctx, commands.ReturnPoolCommand{
		GroupID: groupID,
		UserID:  userID,
	})
	if err != nil {
		return httptransport.SettlementResponse{}, err
	}
	return mapSettlement(result.Settlement), nil
}

func (h Handler) FestiveBroadcastHandler(ctx context.Context, req httptransport.FestiveBroadcastRequest) (httptransport.FestiveBroadcastResponse, error) {
	result, err := h.Festive.Execute(ctx, commands.FestiveBroadcastCommand{
		Amount:     req.Amount,
		ShareCount: req.ShareCount,
		Greeting:   req.Greeting,
		GroupIDs:   req.GroupIDs,
	})
	if err != nil {
		return httptransport.FestiveBroadcastResponse{}, err
	}
	return httptransport.FestiveBroadcastResponse{
		RoundID:    result.RoundID,
		Seeded:     result.Seeded,
		Skipped:    result.Skipped,
		RotatedOut: mapSettlements(result.RotatedOut),
	}, nil
}

func (h Handler) ActivePoolHandler(ctx context.Context, groupID string) (httptransport.ActivePoolResponse, error) {
	view, err := h.ActivePool.Execute(ctx, groupID)
	if err != nil {
		return httptransport.ActivePoolResponse{}, err
	}
	rank := make([]httptransport.RankItem, 0, len(view.Rank))
	for _, entry := range view.Rank {
		rank = append(rank, httptransport.RankItem{
			UserID: entry.UserID,
			Amount: entry.Amount,
		})
	}
	return httptransport.ActivePoolResponse{
		Pool: mapPool(view.Pool),
		Rank: rank,
	}, nil
}

func (h Handler) ListSettlementsHandler(ctx context.Context, groupID string, limit int, offset int) (httptransport.SettlementListResponse, error) {
	results, err := h.Settlements.Execute(ctx, queries.ListSettlementsQuery{
		GroupID: groupID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return httptransport.SettlementListResponse{}, err
	}
	return httptransport.SettlementListResponse{
		Items: mapSettlements(results),
	}, nil
}

func mapPool(pool entities.Pool) httptransport.PoolResponse {
	return httptransport.PoolResponse{
		PoolID:          pool.PoolID,
		GroupID:         pool.GroupID,
		SeederID:        pool.SeederID,
		SeederName:      pool.SeederName,
		Name:            pool.Name,
		Amount:          pool.Amount,
		ShareCount:      pool.ShareCount,
		RemainingShares: len(pool.Shares),
		RemainingAmount: pool.RemainingAmount(),
		AssigneeID:      pool.AssigneeID,
		FestiveRoundID:  pool.FestiveRoundID,
		Status:          string(pool.Status),
		CreatedAt:       pool.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapSettlement(result entities.SettlementResult) httptransport.SettlementResponse {
	claimants := make([]httptransport.ClaimantItem, 0, len(result.Claimants))
	for _, claimant := range result.Claimants {
		claimants = append(claimants, httptransport.ClaimantItem{
			UserID:    claimant.UserID,
			Amount:    claimant.Amount,
			ClaimedAt: claimant.ClaimedAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.SettlementResponse{
		PoolID:         result.PoolID,
		GroupID:        result.GroupID,
		SeederID:       result.SeederID,
		Name:           result.Name,
		FestiveRoundID: result.FestiveRoundID,
		TotalClaimed:   result.TotalClaimed,
		Returned:       result.Returned,
		Claimants:      claimants,
		SettledAt:      result.SettledAt.UTC().Format(time.RFC3339),
	}
}

func mapSettlements(results []entities.SettlementResult) []httptransport.SettlementResponse {
	if len(results) == 0 {
		return nil
	}
	mapped := make([]httptransport.SettlementResponse, 0, len(results))
	for _, result := range results {
		mapped = append(mapped, mapSettlement(result))
	}
	return mapped
}
