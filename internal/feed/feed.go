// Package feed loads historical tick data from files, journals and the
// tick database. Every source yields ticks in event time order.
package feed

import (
	"context"
	"strings"

	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Source yields the full tick set for one run.
type Source interface {
	Load(ctx context.Context) ([]schema.Tick, error)
}

func parseLevel(s string) (schema.DataLevel, error) {
	switch strings.ToLower(s) {
	case "l1":
		return schema.LevelL1, nil
	case "l2":
		return schema.LevelL2, nil
	case "":
		return schema.LevelUnknown, nil
	default:
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "unknown level %q", s)
	}
}

func parseKind(s string) (schema.EventKind, error) {
	switch strings.ToLower(s) {
	case "trade":
		return schema.KindTrade, nil
	case "bid":
		return schema.KindBidQuote, nil
	case "ask":
		return schema.KindAskQuote, nil
	case "reset":
		return schema.KindBookReset, nil
	case "implied_bid":
		return schema.KindImpliedBid, nil
	case "implied_ask":
		return schema.KindImpliedAsk, nil
	case "":
		return schema.KindUnknown, nil
	default:
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "unknown kind %q", s)
	}
}

func parseOp(s string) (schema.BookOp, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return schema.OpNone, nil
	case "add":
		return schema.OpAdd, nil
	case "update":
		return schema.OpUpdate, nil
	case "remove":
		return schema.OpRemove, nil
	case "reset":
		return schema.OpReset, nil
	default:
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "unknown op %q", s)
	}
}
