package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/ports"
	"redpacket/internal/shared/events"
)

var storeEpoch = time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)

func installPool(t *testing.T, store *Store, groupID string, shares []int64, festiveRoundID string) entities.Pool {
	t.Helper()
	var amount int64
	for _, share := range shares {
		amount += share
	}
	pool, err := entities.NewPool("pool-"+groupID, groupID, "seeder-1", "Seeder", "Seeder's red packet",
		amount, shares, "", festiveRoundID, storeEpoch)
	if err != nil {
		t.Fatalf("new pool failed: %v", err)
	}
	if err := store.InstallPool(context.Background(), groupID, pool); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	return pool
}

func TestInstallPoolConflict(t *testing.T) {
	store := NewStore()
	installPool(t, store, "group-1", []int64{5, 5}, "")

	second, _ := entities.NewPool("pool-2", "group-1", "seeder-2", "", "x", 10, []int64{10}, "", "", storeEpoch)
	if err := store.InstallPool(context.Background(), "group-1", second); !errors.Is(err, domainerrors.ErrPoolConflict) {
		t.Fatalf("expected ErrPoolConflict, got %v", err)
	}
}

func TestClaimShareAndSettle(t *testing.T) {
	store := NewStore()
	installPool(t, store, "group-1", []int64{6, 4}, "")

	outcome, err := store.ClaimShare(context.Background(), "group-1", "user-1", storeEpoch)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if outcome.Amount != 6 || outcome.RemainingShares != 1 || outcome.Exhausted {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	result, err := store.SettleActivePool(context.Background(), "group-1", false, storeEpoch.Add(time.Minute))
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if result.TotalClaimed != 6 || result.Returned != 4 {
		t.Fatalf("unexpected settlement: %+v", result)
	}
	if _, exists, _ := store.ActivePool(context.Background(), "group-1"); exists {
		t.Fatalf("expected slot cleared after settle")
	}
	if _, err := store.SettleActivePool(context.Background(), "group-1", false, storeEpoch); !errors.Is(err, domainerrors.ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound on empty slot, got %v", err)
	}
}

func TestSettleOnlyFestiveSkipsUserPool(t *testing.T) {
	store := NewStore()
	installPool(t, store, "group-1", []int64{10}, "")

	if _, err := store.SettleActivePool(context.Background(), "group-1", true, storeEpoch); !errors.Is(err, domainerrors.ErrPoolNotFound) {
		t.Fatalf("onlyFestive settle must skip user pools, got %v", err)
	}
	if _, exists, _ := store.ActivePool(context.Background(), "group-1"); !exists {
		t.Fatalf("user pool must survive an onlyFestive settle")
	}
}

func TestFestiveRoundLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.StartRound(ctx, "round-1", storeEpoch); err != nil {
		t.Fatalf("start round failed: %v", err)
	}
	for _, groupID := range []string{"group-1", "group-2"} {
		if err := store.RegisterInstance(ctx, "round-1", groupID); err != nil {
			t.Fatalf("register %s failed: %v", groupID, err)
		}
	}

	granted, err := store.TryClaimRound(ctx, "round-1", "user-1")
	if err != nil || !granted {
		t.Fatalf("first round claim: granted=%v err=%v", granted, err)
	}
	granted, err = store.TryClaimRound(ctx, "round-1", "user-1")
	if err != nil || granted {
		t.Fatalf("second round claim must be denied: granted=%v err=%v", granted, err)
	}
	if err := store.ReleaseRoundClaim(ctx, "round-1", "user-1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	granted, err = store.TryClaimRound(ctx, "round-1", "user-1")
	if err != nil || !granted {
		t.Fatalf("claim after release: granted=%v err=%v", granted, err)
	}

	remaining, err := store.UnregisterInstance(ctx, "round-1", "group-1")
	if err != nil || remaining != 1 {
		t.Fatalf("unregister: remaining=%d err=%v", remaining, err)
	}
	remaining, err = store.UnregisterInstance(ctx, "round-1", "group-2")
	if err != nil || remaining != 0 {
		t.Fatalf("last unregister: remaining=%d err=%v", remaining, err)
	}
	if _, err := store.TryClaimRound(ctx, "round-1", "user-2"); !errors.Is(err, domainerrors.ErrRoundNotFound) {
		t.Fatalf("expected round dropped with last instance, got %v", err)
	}
}

func TestExpireRounds(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.StartRound(ctx, "round-old", storeEpoch.Add(-48*time.Hour)); err != nil {
		t.Fatalf("start old round failed: %v", err)
	}
	if err := store.StartRound(ctx, "round-new", storeEpoch); err != nil {
		t.Fatalf("start new round failed: %v", err)
	}

	expired, err := store.ExpireRounds(ctx, storeEpoch.Add(-24*time.Hour))
	if err != nil || expired != 1 {
		t.Fatalf("expected one expired round, got %d err=%v", expired, err)
	}
	if _, err := store.TryClaimRound(ctx, "round-new", "user-1"); err != nil {
		t.Fatalf("fresh round must survive the sweep: %v", err)
	}
}

func TestListSettlementsFilterAndPage(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	for i, groupID := range []string{"group-1", "group-2", "group-1"} {
		err := store.RecordSettlement(ctx, entities.SettlementResult{
			PoolID:    "pool-" + string(rune('a'+i)),
			GroupID:   groupID,
			SettledAt: storeEpoch.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	items, err := store.ListSettlements(ctx, "group-1", 10, 0)
	if err != nil || len(items) != 2 {
		t.Fatalf("expected 2 settlements for group-1, got %d err=%v", len(items), err)
	}
	if items[0].SettledAt.Before(items[1].SettledAt) {
		t.Fatalf("expected newest first ordering")
	}

	paged, err := store.ListSettlements(ctx, "", 2, 2)
	if err != nil || len(paged) != 1 {
		t.Fatalf("expected one row on second page, got %d err=%v", len(paged), err)
	}
}

func TestAnnouncementOutboxFlow(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	announcement, _ := json.Marshal(ports.Announcement{GroupID: "group-1", Text: "hello"})
	envelope := events.Envelope{
		EventID:       "event-1",
		EventType:     "gifting.pool.seeded",
		SourceService: "envelope-service",
		OccurredAt:    storeEpoch,
		PartitionKey:  "group-1",
		SchemaVersion: 1,
		Data:          announcement,
	}
	if err := store.AppendAnnouncement(ctx, envelope); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// Replaying the identical envelope is a no-op.
	if err := store.AppendAnnouncement(ctx, envelope); err != nil {
		t.Fatalf("idempotent append failed: %v", err)
	}

	pending, err := store.ListPendingAnnouncements(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending row, got %d err=%v", len(pending), err)
	}
	if pending[0].OutboxID != "event-1" || pending[0].PartitionKey != "group-1" {
		t.Fatalf("unexpected row: %+v", pending[0])
	}

	if err := store.MarkAnnouncementSent(ctx, "event-1", storeEpoch.Add(time.Second)); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	pending, _ = store.ListPendingAnnouncements(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected empty pending list after send, got %d", len(pending))
	}
}
