package ports

import (
	"context"
	"time"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	"redpacket/internal/shared/events"
)

// ClaimOutcome is one resolved claim against a group's active pool. Claims
// are returned as a collection so a group can later hold more than one live
// pool without changing the surface.
type ClaimOutcome struct {
	Amount          int64
	RemainingShares int
	Pool            entities.Pool
	Exhausted       bool
}

// GroupRegistry serializes all mutations of a group's active pool behind a
// per-group lock. Pool snapshots returned from it are safe to use outside
// the lock.
type GroupRegistry interface {
	ActivePool(ctx context.Context, groupID string) (entities.Pool, bool, error)
	// InstallPool makes pool the group's single active pool. It fails with
	// ErrPoolConflict while a prior pool is still live.
	InstallPool(ctx context.Context, groupID string, pool entities.Pool) error
	// ClaimShare atomically takes one share for userID from the active pool.
	ClaimShare(ctx context.Context, groupID string, userID string, now time.Time) (ClaimOutcome, error)
	// SettleActivePool settles and removes the group's active pool.
	// onlyFestive limits the settle to a festive instance (rotation path).
	SettleActivePool(ctx context.Context, groupID string, onlyFestive bool, now time.Time) (entities.SettlementResult, error)
}

// FestiveRegistry tracks festive rounds across all groups. TryClaimRound is
// atomic process-wide (or cluster-wide for the postgres adapter).
type FestiveRegistry interface {
	StartRound(ctx context.Context, roundID string, startedAt time.Time) error
	RegisterInstance(ctx context.Context, roundID string, groupID string) error
	// UnregisterInstance drops a group instance and reports how many remain;
	// the round record is removed when the count reaches zero.
	UnregisterInstance(ctx context.Context, roundID string, groupID string) (int, error)
	// TryClaimRound reserves the one claim userID gets for the round. It
	// returns false when the user already claimed the round in any group.
	TryClaimRound(ctx context.Context, roundID string, userID string) (bool, error)
	// ReleaseRoundClaim undoes a reservation whose share claim lost the
	// race, so the user keeps their shot at the round.
	ReleaseRoundClaim(ctx context.Context, roundID string, userID string) error
	EndRound(ctx context.Context, roundID string) error
	// ExpireRounds removes rounds started before cutoff and returns how many
	// were dropped.
	ExpireRounds(ctx context.Context, cutoff time.Time) (int, error)
}

// LedgerGateway is the external balance store. CheckAndReserve both checks
// and debits; its failure message is surfaced verbatim to the caller.
type LedgerGateway interface {
	CheckAndReserve(ctx context.Context, userID string, amount int64, currency string) error
	Credit(ctx context.Context, userID string, amount int64, currency string) error
}

// TimeoutScheduler fires fn once at the given time unless cancelled first.
// Cancellation is best-effort; settlement idempotency is guaranteed by the
// pool entity, never by the scheduler.
type TimeoutScheduler interface {
	ScheduleAt(key string, at time.Time, fn func())
	Cancel(key string)
}

type SettlementArchive interface {
	RecordSettlement(ctx context.Context, result entities.SettlementResult) error
	ListSettlements(ctx context.Context, groupID string, limit int, offset int) ([]entities.SettlementResult, error)
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// AnnouncementOutbox buffers rendered announcements for the relay worker.
// Append failures are logged by callers and never propagate to pool state.
type AnnouncementOutbox interface {
	AppendAnnouncement(ctx context.Context, envelope events.Envelope) error
	ListPendingAnnouncements(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkAnnouncementSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// Announcement is the rendered payload carried inside an envelope. Targets a
// group and optionally mentions one user.
type Announcement struct {
	GroupID       string `json:"group_id"`
	Text          string `json:"text"`
	MentionUserID string `json:"mention_user_id,omitempty"`
	PoolID        string `json:"pool_id,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, envelope events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
