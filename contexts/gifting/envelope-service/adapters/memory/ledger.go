package memory

import (
	"context"
	"fmt"
	"sync"

	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
)

// Ledger is an in-process balance gateway for development and tests. The
// production gateway lives in the postgres adapter.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]int64)}
}

// SetBalance seeds a balance for tests and the dev bootstrap.
func (l *Ledger) SetBalance(userID string, currency string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[accountKey(userID, currency)] = amount
}

func (l *Ledger) Balance(userID string, currency string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountKey(userID, currency)]
}

func (l *Ledger) CheckAndReserve(_ context.Context, userID string, amount int64, currency string) error {
	if amount <= 0 {
		return domainerrors.ErrInvalidSeedRequest
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := accountKey(userID, currency)
	if l.balances[key] < amount {
		return fmt.Errorf("%w: balance %d is below %d", domainerrors.ErrInsufficientFunds, l.balances[key], amount)
	}
	l.balances[key] -= amount
	return nil
}

func (l *Ledger) Credit(_ context.Context, userID string, amount int64, currency string) error {
	if amount < 0 {
		return domainerrors.ErrInvalidSeedRequest
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[accountKey(userID, currency)] += amount
	return nil
}

func accountKey(userID string, currency string) string {
	return userID + "/" + currency
}
