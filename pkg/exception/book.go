package exception

import "github.com/yanun0323/errors"

// Order book errors
var (
	ErrBookCrossed       = errors.New("book: crossed state")
	ErrBookOrdering      = errors.New("book: ladder ordering violated")
	ErrBookVolume        = errors.New("book: non-positive volume")
	ErrBookDuplicateMM   = errors.New("book: duplicate market maker on side")
	ErrBookInconsistency = errors.New("book: side totals inconsistent")
	ErrBookWideSpread    = errors.New("book: spread above threshold")
	ErrUnknownSymbol     = errors.New("book: unknown symbol")
)
