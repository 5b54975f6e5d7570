package services

import (
	"math/rand/v2"

	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
)

// AllocateShares splits amount into shares positive integers summing to
// amount. Each carve is bounded so every remaining share can still get at
// least 1 unit, and the final sequence is shuffled so claim order does not
// correlate with share size.
func AllocateShares(amount int64, shares int) ([]int64, error) {
	if amount <= 0 || shares <= 0 || int64(shares) > amount {
		return nil, domainerrors.ErrInvalidAllocation
	}

	result := make([]int64, 0, shares)
	remaining := amount
	for i := shares; i > 1; i-- {
		// Leave at least 1 unit for each share still to be carved.
		ceiling := remaining - int64(i-1)
		carved := int64(1)
		if ceiling > 1 {
			carved = 1 + rand.Int64N(ceiling)
		}
		result = append(result, carved)
		remaining -= carved
	}
	result = append(result, remaining)

	rand.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})
	return result, nil
}
