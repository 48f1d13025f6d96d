package book

import (
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// ValidationResult carries the violations found in one audit pass.
// Errors are invariant failures; Warnings are advisory market-quality
// signals and do not invalidate the state.
type ValidationResult struct {
	Errors   []error
	Warnings []error
}

// Valid reports whether no invariant violations were found.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// Validator is a pure invariant checker over a book state. It never
// mutates or corrects.
type Validator struct {
	strict             bool
	maxSpreadThreshold schema.Price
	minVolumeThreshold schema.Quantity
}

// NewValidator creates a validator. Strict mode adds duplicate
// market-maker and side-total consistency checks.
func NewValidator(strict bool) *Validator {
	return &Validator{strict: strict}
}

// WithSpreadThreshold flags spreads above the threshold.
func (v *Validator) WithSpreadThreshold(threshold schema.Price) *Validator {
	v.maxSpreadThreshold = threshold
	return v
}

// WithVolumeThreshold raises the minimum acceptable level volume.
func (v *Validator) WithVolumeThreshold(threshold schema.Quantity) *Validator {
	v.minVolumeThreshold = threshold
	return v
}

// Validate audits the state and returns all violations found.
func (v *Validator) Validate(st *State) ValidationResult {
	var res ValidationResult

	if st.IsCrossed() {
		res.Errors = append(res.Errors, errors.Wrapf(exception.ErrBookCrossed,
			"bid %s >= ask %s", st.bestBid, st.bestAsk))
	}

	v.checkLadder(&res, st.Bids(), SideBid)
	v.checkLadder(&res, st.Asks(), SideAsk)

	if v.maxSpreadThreshold > 0 {
		if spread, ok := st.Spread(); ok && spread > v.maxSpreadThreshold {
			res.Warnings = append(res.Warnings, errors.Wrapf(exception.ErrBookWideSpread,
				"spread %s exceeds threshold %s", spread, v.maxSpreadThreshold))
		}
	}

	if v.strict {
		v.checkMarketMakers(&res, st.Bids(), SideBid)
		v.checkMarketMakers(&res, st.Asks(), SideAsk)
		v.checkSideTotal(&res, st.Bids(), st.totalBidVolume, SideBid)
		v.checkSideTotal(&res, st.Asks(), st.totalAskVolume, SideAsk)
	}

	return res
}

// checkLadder verifies best-first ordering and positive volumes.
// Bids must be strictly descending, asks strictly ascending.
func (v *Validator) checkLadder(res *ValidationResult, levels []PriceLevel, side Side) {
	for i, lv := range levels {
		if i > 0 {
			prev := levels[i-1].Price
			ordered := lv.Price < prev
			if side == SideAsk {
				ordered = lv.Price > prev
			}
			if !ordered {
				res.Errors = append(res.Errors, errors.Wrapf(exception.ErrBookOrdering,
					"%s ladder: %s after %s", side, lv.Price, prev))
			}
		}
		if lv.Volume <= v.minVolumeThreshold {
			res.Errors = append(res.Errors, errors.Wrapf(exception.ErrBookVolume,
				"%s level %s volume %d", side, lv.Price, lv.Volume))
		}
	}
}

func (v *Validator) checkMarketMakers(res *ValidationResult, levels []PriceLevel, side Side) {
	seen := make(map[string]struct{})
	for _, lv := range levels {
		for _, mm := range lv.MarketMakers {
			if _, ok := seen[mm]; ok {
				res.Errors = append(res.Errors, errors.Wrapf(exception.ErrBookDuplicateMM,
					"%s side: %s", side, mm))
				continue
			}
			seen[mm] = struct{}{}
		}
	}
}

func (v *Validator) checkSideTotal(res *ValidationResult, levels []PriceLevel, stored schema.Quantity, side Side) {
	var sum schema.Quantity
	for _, lv := range levels {
		sum += lv.Volume
	}
	if sum != stored {
		res.Errors = append(res.Errors, errors.Wrapf(exception.ErrBookInconsistency,
			"%s side: levels sum %d, stored %d", side, sum, stored))
	}
}
