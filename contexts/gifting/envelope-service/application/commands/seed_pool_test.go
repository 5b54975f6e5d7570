package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	application "redpacket/contexts/gifting/envelope-service/application"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
)

func TestSeedPoolDebitsAndInstalls(t *testing.T) {
	env := newTestEnv()
	env.ledger.SetBalance("user-1", testCurrency, 500)

	result, err := env.seedUseCase().Execute(context.Background(), SeedPoolCommand{
		GroupID:    "group-1",
		UserID:     "user-1",
		UserName:   "Ming",
		Amount:     100,
		ShareCount: 4,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if result.Pool.Amount != 100 || result.Pool.ShareCount != 4 {
		t.Fatalf("unexpected pool: %+v", result.Pool)
	}
	if got := env.ledger.Balance("user-1", testCurrency); got != 400 {
		t.Fatalf("expected balance 400 after debit, got %d", got)
	}
	if !env.scheduler.Armed(application.PoolTimeoutKey("group-1")) {
		t.Fatalf("expected pool timeout armed")
	}

	active, exists, err := env.store.ActivePool(context.Background(), "group-1")
	if err != nil || !exists {
		t.Fatalf("expected active pool, exists=%v err=%v", exists, err)
	}
	if active.SeederID != "user-1" || active.Name != "Ming's red packet" {
		t.Fatalf("unexpected installed pool: %+v", active)
	}

	pending, err := env.store.ListPendingAnnouncements(context.Background(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one seed announcement, got %d err=%v", len(pending), err)
	}
	if pending[0].EventType != application.EventTypePoolSeeded {
		t.Fatalf("unexpected announcement type %q", pending[0].EventType)
	}
}

func TestSeedPoolRejectsInsufficientFunds(t *testing.T) {
	env := newTestEnv()
	env.ledger.SetBalance("user-1", testCurrency, 50)

	_, err := env.seedUseCase().Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1",
		UserID:  "user-1",
		Amount:  100,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, exists, _ := env.store.ActivePool(context.Background(), "group-1"); exists {
		t.Fatalf("no pool may be installed on a rejected seed")
	}
}

func TestSeedPoolConflictKeepsFundsUntouched(t *testing.T) {
	env := newTestEnv()
	env.ledger.SetBalance("user-1", testCurrency, 500)
	env.ledger.SetBalance("user-2", testCurrency, 500)
	seed := env.seedUseCase()

	if _, err := seed.Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1", UserID: "user-1", Amount: 100,
	}); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}

	_, err := seed.Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1", UserID: "user-2", Amount: 100,
	})
	if !errors.Is(err, domainerrors.ErrPoolConflict) {
		t.Fatalf("expected ErrPoolConflict, got %v", err)
	}
	if got := env.ledger.Balance("user-2", testCurrency); got != 500 {
		t.Fatalf("conflicting seed must not keep the debit, balance %d", got)
	}
}

func TestSeedPoolCooldownWhileOwnPoolYoung(t *testing.T) {
	env := newTestEnv()
	env.ledger.SetBalance("user-1", testCurrency, 500)
	seed := env.seedUseCase()

	if _, err := seed.Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1", UserID: "user-1", Amount: 100,
	}); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}

	env.clock.Advance(30 * time.Second)
	_, err := seed.Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1", UserID: "user-1", Amount: 100,
	})
	if !errors.Is(err, domainerrors.ErrCooldownActive) {
		t.Fatalf("expected ErrCooldownActive, got %v", err)
	}
}

func TestSeedPoolReplacesOwnStalePool(t *testing.T) {
	env := newTestEnv()
	env.ledger.SetBalance("user-1", testCurrency, 500)
	seed := env.seedUseCase()

	first, err := seed.Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1", UserID: "user-1", Amount: 100,
	})
	if err != nil {
		t.Fatalf("first seed failed: %v", err)
	}

	env.clock.Advance(2 * time.Minute)
	second, err := seed.Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1", UserID: "user-1", Amount: 50,
	})
	if err != nil {
		t.Fatalf("re-seed after interval failed: %v", err)
	}
	if second.Pool.PoolID == first.Pool.PoolID {
		t.Fatalf("expected a fresh pool")
	}
	// 500 - 100 (first seed) + 100 (untouched remainder returned) - 50.
	if got := env.ledger.Balance("user-1", testCurrency); got != 450 {
		t.Fatalf("expected balance 450 after rollover, got %d", got)
	}

	archived, err := env.store.ListSettlements(context.Background(), "group-1", 10, 0)
	if err != nil || len(archived) != 1 {
		t.Fatalf("expected one archived settlement, got %d err=%v", len(archived), err)
	}
	if archived[0].PoolID != first.Pool.PoolID || archived[0].Returned != 100 {
		t.Fatalf("unexpected settlement: %+v", archived[0])
	}
}

func TestSeedPoolAssigneeForcesSingleShare(t *testing.T) {
	env := newTestEnv()
	env.ledger.SetBalance("user-1", testCurrency, 500)

	result, err := env.seedUseCase().Execute(context.Background(), SeedPoolCommand{
		GroupID:    "group-1",
		UserID:     "user-1",
		Amount:     100,
		ShareCount: 8,
		AssigneeID: "user-9",
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if result.Pool.ShareCount != 1 || result.Pool.AssigneeID != "user-9" {
		t.Fatalf("expected single-share assigned pool, got %+v", result.Pool)
	}
}

func TestSeedPoolTimeoutReturnsRemainder(t *testing.T) {
	env := newTestEnv()
	env.ledger.SetBalance("user-1", testCurrency, 500)

	if _, err := env.seedUseCase().Execute(context.Background(), SeedPoolCommand{
		GroupID: "group-1", UserID: "user-1", Amount: 100, ShareCount: 2,
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := env.claimUseCase().Execute(context.Background(), ClaimCommand{
		GroupID: "group-1", UserID: "user-2",
	}); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	env.scheduler.Fire(t, application.PoolTimeoutKey("group-1"))

	if _, exists, _ := env.store.ActivePool(context.Background(), "group-1"); exists {
		t.Fatalf("expected pool cleared after timeout")
	}
	archived, _ := env.store.ListSettlements(context.Background(), "group-1", 10, 0)
	if len(archived) != 1 {
		t.Fatalf("expected one settlement, got %d", len(archived))
	}
	want := 400 + archived[0].Returned
	if got := env.ledger.Balance("user-1", testCurrency); got != want {
		t.Fatalf("expected remainder credited back, balance %d want %d", got, want)
	}
}
