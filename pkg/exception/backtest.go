package exception

import "github.com/yanun0323/errors"

// Backtest failure taxonomy. Every run-time failure surfaced by the
// engines wraps exactly one of these.
var (
	ErrInvalidConfig = errors.New("backtest: invalid configuration")
	ErrData          = errors.New("backtest: data error")
	ErrStrategy      = errors.New("backtest: strategy error")
	ErrEngine        = errors.New("backtest: engine error")
)
