package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SeedPoolRequest struct {
	UserName   string `json:"user_name,omitempty"`
	Amount     int64  `json:"amount"`
	ShareCount int    `json:"share_count,omitempty"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

type PoolResponse struct {
	PoolID          string `json:"pool_id"`
	GroupID         string `json:"group_id"`
	SeederID        string `json:"seeder_id"`
	SeederName      string `json:"seeder_name,omitempty"`
	Name            string `json:"name"`
	Amount          int64  `json:"amount"`
	ShareCount      int    `json:"share_count"`
	RemainingShares int    `json:"remaining_shares"`
	RemainingAmount int64  `json:"remaining_amount"`
	AssigneeID      string `json:"assignee_id,omitempty"`
	FestiveRoundID  string `json:"festive_round_id,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

type RankItem struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

type ActivePoolResponse struct {
	Pool PoolResponse `json:"pool"`
	Rank []RankItem   `json:"rank"`
}

type ClaimedShareItem struct {
	PoolID     string `json:"pool_id"`
	PoolName   string `json:"pool_name"`
	SeederID   string `json:"seeder_id"`
	SeederName string `json:"seeder_name,omitempty"`
	Amount     int64  `json:"amount"`
	Remaining  int    `json:"remaining_shares"`
}

type ClaimResponse struct {
	Claims      []ClaimedShareItem   `json:"claims"`
	Settlements []SettlementResponse `json:"settlements,omitempty"`
}

type ClaimantItem struct {
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`
	ClaimedAt string `json:"claimed_at"`
}

type SettlementResponse struct {
	PoolID         string         `json:"pool_id"`
	GroupID        string         `json:"group_id"`
	SeederID       string         `json:"seeder_id"`
	Name           string         `json:"name"`
	FestiveRoundID string         `json:"festive_round_id,omitempty"`
	TotalClaimed   int64          `json:"total_claimed"`
	Returned       int64          `json:"returned"`
	Claimants      []ClaimantItem `json:"claimants"`
	SettledAt      string         `json:"settled_at"`
}

type SettlementListResponse struct {
	Items []SettlementResponse `json:"items"`
}

type FestiveBroadcastRequest struct {
	Amount     int64    `json:"amount"`
	ShareCount int      `json:"share_count"`
	Greeting   string   `json:"greeting,omitempty"`
	GroupIDs   []string `json:"group_ids"`
}

type FestiveBroadcastResponse struct {
	RoundID    string               `json:"round_id"`
	Seeded     []string             `json:"seeded"`
	Skipped    []string             `json:"skipped"`
	RotatedOut []SettlementResponse `json:"rotated_out,omitempty"`
}
