package book

import (
	"testing"

	"main/internal/schema"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"
)

func hasViolation(res ValidationResult, sentinel error) bool {
	for _, err := range res.Errors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func TestValidatorCleanBook(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 100, 1))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.25", 80, 2))

	res := NewValidator(true).Validate(st)
	assert.True(t, res.Valid(), "unexpected violations: %v", res.Errors)
}

func TestValidatorCrossedBook(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.50", 10, 1))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.25", 10, 2))

	res := NewValidator(false).Validate(st)
	require.False(t, res.Valid())
	assert.True(t, hasViolation(res, exception.ErrBookCrossed))
}

func TestValidatorSideTotalMismatch(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 10, 1))

	// skew the stored total behind the validator's back
	st.totalBidVolume += 5

	res := NewValidator(true).Validate(st)
	require.False(t, res.Valid())
	assert.True(t, hasViolation(res, exception.ErrBookInconsistency))

	// non-strict mode does not run the totals check
	res = NewValidator(false).Validate(st)
	assert.True(t, res.Valid())
}

func TestValidatorDuplicateMarketMaker(t *testing.T) {
	st := NewState(1)
	var p Processor

	mk := l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 10, 1)
	mk.MarketMaker = "MM01"
	p.Apply(st, mk)

	mk2 := l2(schema.KindBidQuote, schema.OpAdd, "4499.75", 10, 2)
	mk2.MarketMaker = "MM01"
	p.Apply(st, mk2)

	res := NewValidator(true).Validate(st)
	require.False(t, res.Valid())
	assert.True(t, hasViolation(res, exception.ErrBookDuplicateMM))
}

func TestValidatorSpreadThresholdWarns(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 10, 1))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4510.00", 10, 2))

	threshold, err := schema.ParsePrice("5.00")
	require.NoError(t, err)
	res := NewValidator(false).WithSpreadThreshold(threshold).Validate(st)

	// a wide spread is advisory, not an invariant failure
	assert.True(t, res.Valid())
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.Is(res.Warnings[0], exception.ErrBookWideSpread))
}
