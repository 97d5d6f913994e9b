// internal/scoring/scoring.go
package scoring

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/trix/internal/contract"
	"github.com/jason-s-yu/trix/internal/models"
)

var (
	ErrUnknownContract    = errors.New("unknown contract")
	ErrRankNotPermutation = errors.New("ranks must be unique (1, 2, 3, 4)")
	ErrCountMismatch      = errors.New("card counts do not add up")
	ErrNegativeCount      = errors.New("counts cannot be negative")
)

// Inputs holds one raw value per seat, indexed by PlayerID: a card/trick
// count for count contracts, or a finishing rank for the Trix contract.
type Inputs [models.SeatCount]int

// RankPoints maps a Trix finishing rank to the points awarded.
var RankPoints = map[int]int{1: 200, 2: 150, 3: 100, 4: 50}

// CheckInputs rejects values that are never legal for any contract. It is
// meant for the edge where user input enters the core.
func CheckInputs(in Inputs) error {
	for id, v := range in {
		if v < 0 {
			return fmt.Errorf("%w: seat %d entered %d", ErrNegativeCount, id, v)
		}
	}
	return nil
}

// Validate reports whether in is a complete, legal round for contract t.
// It has no side effects and may be called on every keystroke.
func Validate(t contract.Type, in Inputs) error {
	c, ok := contract.Lookup(t)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownContract, t)
	}

	if c.Regime == contract.RankRegime {
		return validateRanks(c, in)
	}

	total := 0
	for _, v := range in {
		total += v
	}
	if total != c.ItemCap {
		return fmt.Errorf("%w: total counts must equal %d, got %d", ErrCountMismatch, c.ItemCap, total)
	}
	return nil
}

// validateRanks requires the inputs to be a permutation of 1..ItemCap.
func validateRanks(c contract.Contract, in Inputs) error {
	seen := make(map[int]bool, len(in))
	for _, rank := range in {
		if rank < 1 || rank > c.ItemCap || seen[rank] {
			return ErrRankNotPermutation
		}
		seen[rank] = true
	}
	return nil
}

// IsValid is Validate reduced to a boolean.
func IsValid(t contract.Type, in Inputs) bool {
	return Validate(t, in) == nil
}

// ComputeDeltas converts a round's raw inputs into a signed score change per
// seat. Invalid inputs are refused rather than scored.
func ComputeDeltas(t contract.Type, in Inputs) (map[models.PlayerID]int, error) {
	if err := Validate(t, in); err != nil {
		return nil, err
	}
	c, _ := contract.Lookup(t)

	deltas := make(map[models.PlayerID]int, models.SeatCount)
	for i, v := range in {
		id := models.PlayerID(i)
		if c.Regime == contract.RankRegime {
			deltas[id] = RankPoints[v]
		} else {
			deltas[id] = v * c.PointUnit
		}
	}
	return deltas, nil
}
