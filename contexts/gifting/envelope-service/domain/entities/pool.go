package entities

import (
	"sort"
	"strings"
	"time"

	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
)

type PoolStatus string

const (
	PoolStatusOpen      PoolStatus = "open"
	PoolStatusExhausted PoolStatus = "exhausted"
	PoolStatusSettled   PoolStatus = "settled"
)

// ClaimEntry records one user's successful take. Entries are kept in claim
// order; a user appears at most once per pool.
type ClaimEntry struct {
	UserID    string
	Amount    int64
	ClaimedAt time.Time
}

type RankEntry struct {
	UserID string
	Amount int64
}

type SettlementResult struct {
	PoolID         string
	GroupID        string
	SeederID       string
	Name           string
	FestiveRoundID string
	TotalClaimed   int64
	Returned       int64
	Claimants      []ClaimEntry
	SettledAt      time.Time
}

// Pool is one seeded gift instance. Shares are pre-partitioned at seed time
// and popped from the front in claim order, so claim order never correlates
// with share size beyond the initial shuffle.
type Pool struct {
	PoolID         string
	GroupID        string
	SeederID       string
	SeederName     string
	Name           string
	Amount         int64
	ShareCount     int
	Shares         []int64
	AssigneeID     string
	FestiveRoundID string
	Claims         []ClaimEntry
	Status         PoolStatus
	CreatedAt      time.Time
	SettledAt      time.Time
}

func NewPool(
	poolID string,
	groupID string,
	seederID string,
	seederName string,
	name string,
	amount int64,
	shares []int64,
	assigneeID string,
	festiveRoundID string,
	createdAt time.Time,
) (Pool, error) {
	if strings.TrimSpace(poolID) == "" ||
		strings.TrimSpace(groupID) == "" ||
		strings.TrimSpace(seederID) == "" {
		return Pool{}, domainerrors.ErrInvalidSeedRequest
	}
	if amount <= 0 || len(shares) == 0 {
		return Pool{}, domainerrors.ErrInvalidSeedRequest
	}
	var total int64
	for _, share := range shares {
		if share <= 0 {
			return Pool{}, domainerrors.ErrInvalidAllocation
		}
		total += share
	}
	if total != amount {
		return Pool{}, domainerrors.ErrInvalidAllocation
	}
	if assigneeID != "" && len(shares) != 1 {
		return Pool{}, domainerrors.ErrInvalidSeedRequest
	}

	return Pool{
		PoolID:         poolID,
		GroupID:        groupID,
		SeederID:       seederID,
		SeederName:     seederName,
		Name:           name,
		Amount:         amount,
		ShareCount:     len(shares),
		Shares:         append([]int64(nil), shares...),
		AssigneeID:     assigneeID,
		FestiveRoundID: festiveRoundID,
		Status:         PoolStatusOpen,
		CreatedAt:      createdAt.UTC(),
	}, nil
}

func (p Pool) IsFestive() bool {
	return p.FestiveRoundID != ""
}

// RemainingAmount is the unclaimed portion. At every point
// RemainingAmount() + TotalClaimed() == Amount.
func (p Pool) RemainingAmount() int64 {
	var total int64
	for _, share := range p.Shares {
		total += share
	}
	return total
}

func (p Pool) TotalClaimed() int64 {
	var total int64
	for _, entry := range p.Claims {
		total += entry.Amount
	}
	return total
}

func (p Pool) HasClaimed(userID string) bool {
	for _, entry := range p.Claims {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}

// Claim pops the front share for userID. Returns the awarded amount and the
// number of shares left after the take.
func (p *Pool) Claim(userID string, now time.Time) (int64, int, error) {
	if p.Status != PoolStatusOpen {
		return 0, 0, domainerrors.ErrExhausted
	}
	if p.AssigneeID != "" && p.AssigneeID != userID {
		return 0, 0, domainerrors.ErrRestricted
	}
	if p.HasClaimed(userID) {
		return 0, 0, domainerrors.ErrAlreadyClaimed
	}
	if len(p.Shares) == 0 {
		return 0, 0, domainerrors.ErrExhausted
	}

	amount := p.Shares[0]
	p.Shares = p.Shares[1:]
	p.Claims = append(p.Claims, ClaimEntry{
		UserID:    userID,
		Amount:    amount,
		ClaimedAt: now.UTC(),
	})
	if len(p.Shares) == 0 {
		p.Status = PoolStatusExhausted
	}
	return amount, len(p.Shares), nil
}

// Settle finalizes the pool. Only the first call has effect; concurrent
// timer and claim paths both race into this guard and the loser backs off.
func (p *Pool) Settle(now time.Time) (SettlementResult, error) {
	if p.Status == PoolStatusSettled {
		return SettlementResult{}, domainerrors.ErrAlreadySettled
	}

	returned := p.RemainingAmount()
	p.Shares = nil
	p.Status = PoolStatusSettled
	p.SettledAt = now.UTC()

	return SettlementResult{
		PoolID:         p.PoolID,
		GroupID:        p.GroupID,
		SeederID:       p.SeederID,
		Name:           p.Name,
		FestiveRoundID: p.FestiveRoundID,
		TotalClaimed:   p.TotalClaimed(),
		Returned:       returned,
		Claimants:      append([]ClaimEntry(nil), p.Claims...),
		SettledAt:      p.SettledAt,
	}, nil
}

// BuildRank orders claimants by amount descending, earlier claim winning
// ties. Valid in any state.
func (p Pool) BuildRank(topN int) []RankEntry {
	ordered := append([]ClaimEntry(nil), p.Claims...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Amount > ordered[j].Amount
	})
	if topN > 0 && len(ordered) > topN {
		ordered = ordered[:topN]
	}
	rank := make([]RankEntry, 0, len(ordered))
	for _, entry := range ordered {
		rank = append(rank, RankEntry{UserID: entry.UserID, Amount: entry.Amount})
	}
	return rank
}

// Snapshot deep-copies the pool so callers can do I/O without holding
// registry locks.
func (p Pool) Snapshot() Pool {
	copied := p
	copied.Shares = append([]int64(nil), p.Shares...)
	copied.Claims = append([]ClaimEntry(nil), p.Claims...)
	return copied
}
