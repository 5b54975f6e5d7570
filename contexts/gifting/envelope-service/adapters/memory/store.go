package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/ports"
	"redpacket/internal/shared/events"

	"github.com/google/uuid"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// Store is the in-process backing for the gifting registries. Pool state is
// process-scoped on purpose; only the group slot's own mutex is held while a
// pool mutates, so groups never contend with each other.
type Store struct {
	mu     sync.Mutex
	groups map[string]*groupSlot

	festiveMu sync.Mutex
	rounds    map[string]*roundState

	archiveMu   sync.Mutex
	settlements []entities.SettlementResult

	outboxMu sync.Mutex
	outbox   map[string]outboxRecord
	order    []string
}

type groupSlot struct {
	mu   sync.Mutex
	pool *entities.Pool
}

type roundState struct {
	startedAt time.Time
	instances map[string]struct{}
	claimed   map[string]struct{}
}

type outboxRecord struct {
	message ports.OutboxMessage
	status  string
	sentAt  *time.Time
}

func NewStore() *Store {
	return &Store{
		groups: make(map[string]*groupSlot),
		rounds: make(map[string]*roundState),
		outbox: make(map[string]outboxRecord),
	}
}

func (s *Store) slot(groupID string) *groupSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.groups[groupID]
	if !ok {
		slot = &groupSlot{}
		s.groups[groupID] = slot
	}
	return slot
}

func (s *Store) ActivePool(_ context.Context, groupID string) (entities.Pool, bool, error) {
	slot := s.slot(groupID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.pool == nil {
		return entities.Pool{}, false, nil
	}
	return slot.pool.Snapshot(), true, nil
}

func (s *Store) InstallPool(_ context.Context, groupID string, pool entities.Pool) error {
	if strings.TrimSpace(groupID) == "" || pool.PoolID == "" {
		return domainerrors.ErrInvalidSeedRequest
	}

	slot := s.slot(groupID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.pool != nil && slot.pool.Status != entities.PoolStatusSettled {
		return domainerrors.ErrPoolConflict
	}
	installed := pool.Snapshot()
	slot.pool = &installed
	return nil
}

func (s *Store) ClaimShare(_ context.Context, groupID string, userID string, now time.Time) (ports.ClaimOutcome, error) {
	slot := s.slot(groupID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.pool == nil {
		return ports.ClaimOutcome{}, domainerrors.ErrPoolNotFound
	}
	amount, remaining, err := slot.pool.Claim(userID, now)
	if err != nil {
		return ports.ClaimOutcome{}, err
	}
	return ports.ClaimOutcome{
		Amount:          amount,
		RemainingShares: remaining,
		Pool:            slot.pool.Snapshot(),
		Exhausted:       remaining == 0,
	}, nil
}

func (s *Store) SettleActivePool(_ context.Context, groupID string, onlyFestive bool, now time.Time) (entities.SettlementResult, error) {
	slot := s.slot(groupID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.pool == nil {
		return entities.SettlementResult{}, domainerrors.ErrPoolNotFound
	}
	if onlyFestive && !slot.pool.IsFestive() {
		return entities.SettlementResult{}, domainerrors.ErrPoolNotFound
	}
	result, err := slot.pool.Settle(now)
	if err != nil {
		return entities.SettlementResult{}, err
	}
	slot.pool = nil
	return result, nil
}

func (s *Store) StartRound(_ context.Context, roundID string, startedAt time.Time) error {
	if strings.TrimSpace(roundID) == "" {
		return domainerrors.ErrRoundNotFound
	}

	s.festiveMu.Lock()
	defer s.festiveMu.Unlock()

	if _, exists := s.rounds[roundID]; exists {
		return nil
	}
	s.rounds[roundID] = &roundState{
		startedAt: startedAt.UTC(),
		instances: make(map[string]struct{}),
		claimed:   make(map[string]struct{}),
	}
	return nil
}

func (s *Store) RegisterInstance(_ context.Context, roundID string, groupID string) error {
	s.festiveMu.Lock()
	defer s.festiveMu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return domainerrors.ErrRoundNotFound
	}
	round.instances[groupID] = struct{}{}
	return nil
}

func (s *Store) UnregisterInstance(_ context.Context, roundID string, groupID string) (int, error) {
	s.festiveMu.Lock()
	defer s.festiveMu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return 0, nil
	}
	delete(round.instances, groupID)
	remaining := len(round.instances)
	if remaining == 0 {
		delete(s.rounds, roundID)
	}
	return remaining, nil
}

func (s *Store) TryClaimRound(_ context.Context, roundID string, userID string) (bool, error) {
	s.festiveMu.Lock()
	defer s.festiveMu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return false, domainerrors.ErrRoundNotFound
	}
	if _, claimed := round.claimed[userID]; claimed {
		return false, nil
	}
	round.claimed[userID] = struct{}{}
	return true, nil
}

func (s *Store) ReleaseRoundClaim(_ context.Context, roundID string, userID string) error {
	s.festiveMu.Lock()
	defer s.festiveMu.Unlock()

	if round, ok := s.rounds[roundID]; ok {
		delete(round.claimed, userID)
	}
	return nil
}

func (s *Store) EndRound(_ context.Context, roundID string) error {
	s.festiveMu.Lock()
	defer s.festiveMu.Unlock()

	delete(s.rounds, roundID)
	return nil
}

func (s *Store) ExpireRounds(_ context.Context, cutoff time.Time) (int, error) {
	s.festiveMu.Lock()
	defer s.festiveMu.Unlock()

	expired := 0
	for roundID, round := range s.rounds {
		if round.startedAt.Before(cutoff.UTC()) {
			delete(s.rounds, roundID)
			expired++
		}
	}
	return expired, nil
}

func (s *Store) RecordSettlement(_ context.Context, result entities.SettlementResult) error {
	s.archiveMu.Lock()
	defer s.archiveMu.Unlock()

	s.settlements = append(s.settlements, result)
	return nil
}

func (s *Store) ListSettlements(_ context.Context, groupID string, limit int, offset int) ([]entities.SettlementResult, error) {
	s.archiveMu.Lock()
	defer s.archiveMu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items := make([]entities.SettlementResult, 0)
	for _, item := range s.settlements {
		if groupID == "" || item.GroupID == groupID {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SettledAt.After(items[j].SettledAt)
	})
	if offset >= len(items) {
		return []entities.SettlementResult{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]entities.SettlementResult(nil), items[offset:end]...), nil
}

func (s *Store) AppendAnnouncement(_ context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return domainerrors.ErrInvalidSeedRequest
	}

	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrPoolConflict
		}
		return nil
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
		status: outboxStatusPending,
	}
	s.order = append(s.order, outboxID)
	return nil
}

func (s *Store) ListPendingAnnouncements(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, outboxID := range s.order {
		row, ok := s.outbox[outboxID]
		if !ok || row.status != outboxStatusPending {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkAnnouncementSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrPoolNotFound
	}
	ts := sentAt.UTC()
	row.status = outboxStatusSent
	row.sentAt = &ts
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
