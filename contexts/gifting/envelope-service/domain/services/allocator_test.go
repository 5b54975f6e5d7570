package services

import (
	"errors"
	"testing"

	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
)

func TestAllocateSharesPartitionsExactly(t *testing.T) {
	for _, tc := range []struct {
		amount int64
		shares int
	}{
		{100, 5},
		{7, 7},
		{1, 1},
		{1000000, 37},
	} {
		got, err := AllocateShares(tc.amount, tc.shares)
		if err != nil {
			t.Fatalf("allocate %d/%d failed: %v", tc.amount, tc.shares, err)
		}
		if len(got) != tc.shares {
			t.Fatalf("expected %d shares, got %d", tc.shares, len(got))
		}
		var sum int64
		for _, share := range got {
			if share < 1 {
				t.Fatalf("share below minimum: %d", share)
			}
			sum += share
		}
		if sum != tc.amount {
			t.Fatalf("shares sum to %d, want %d", sum, tc.amount)
		}
	}
}

func TestAllocateSharesEqualAmountGivesOnes(t *testing.T) {
	got, err := AllocateShares(4, 4)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	for _, share := range got {
		if share != 1 {
			t.Fatalf("expected every share to be 1, got %v", got)
		}
	}
}

func TestAllocateSharesRejectsBadInput(t *testing.T) {
	for _, tc := range []struct {
		amount int64
		shares int
	}{
		{0, 1},
		{-5, 3},
		{10, 0},
		{10, -1},
		{3, 4},
	} {
		if _, err := AllocateShares(tc.amount, tc.shares); !errors.Is(err, domainerrors.ErrInvalidAllocation) {
			t.Fatalf("allocate %d/%d: expected ErrInvalidAllocation, got %v", tc.amount, tc.shares, err)
		}
	}
}
