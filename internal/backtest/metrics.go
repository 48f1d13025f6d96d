package backtest

import (
	"math"

	"main/internal/schema"
)

const annualizationFactor = 252

// EquityPoint is one sample of account equity.
type EquityPoint struct {
	TsNano int64
	Equity schema.Notional
}

// Performance accumulates the equity curve and per-sample returns,
// and derives the risk ratios at the end of a run.
type Performance struct {
	initialCapital schema.Notional

	equityCurve []EquityPoint
	returns     []float64

	highWaterMark   schema.Notional
	currentDrawdown float64
	maxDrawdown     float64
}

// NewPerformance starts tracking from the initial capital.
func NewPerformance(initialCapital schema.Notional) *Performance {
	return &Performance{
		initialCapital: initialCapital,
		highWaterMark:  initialCapital,
	}
}

// UpdateEquity appends one equity sample, records the return against
// the previous sample and advances the drawdown state. Max drawdown
// only ever deepens.
func (p *Performance) UpdateEquity(tsNano int64, equity schema.Notional) {
	if n := len(p.equityCurve); n > 0 {
		prev := p.equityCurve[n-1].Equity
		if prev != 0 {
			p.returns = append(p.returns, float64(equity-prev)/float64(prev))
		}
	}
	p.equityCurve = append(p.equityCurve, EquityPoint{TsNano: tsNano, Equity: equity})

	if equity > p.highWaterMark {
		p.highWaterMark = equity
	}
	if p.highWaterMark > 0 {
		p.currentDrawdown = float64(p.highWaterMark-equity) / float64(p.highWaterMark)
		if p.currentDrawdown > p.maxDrawdown {
			p.maxDrawdown = p.currentDrawdown
		}
	}
}

// EquityCurve exposes the recorded samples.
func (p *Performance) EquityCurve() []EquityPoint { return p.equityCurve }

// FinalEquity is the last recorded sample, or the initial capital when
// nothing was recorded.
func (p *Performance) FinalEquity() schema.Notional {
	if n := len(p.equityCurve); n > 0 {
		return p.equityCurve[n-1].Equity
	}
	return p.initialCapital
}

// TotalReturn is the fractional gain over the initial capital.
func (p *Performance) TotalReturn() float64 {
	if p.initialCapital == 0 {
		return 0
	}
	return float64(p.FinalEquity()-p.initialCapital) / float64(p.initialCapital)
}

// MaxDrawdown is the deepest peak-to-trough fraction seen.
func (p *Performance) MaxDrawdown() float64 { return p.maxDrawdown }

// CurrentDrawdown is the drawdown at the latest sample.
func (p *Performance) CurrentDrawdown() float64 { return p.currentDrawdown }

// SharpeRatio is mean return over its standard deviation, annualized.
func (p *Performance) SharpeRatio() float64 {
	mean, std := meanStd(p.returns)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(annualizationFactor)
}

// SortinoRatio penalizes downside deviation only. No downside means 0.
func (p *Performance) SortinoRatio() float64 {
	if len(p.returns) == 0 {
		return 0
	}
	mean, _ := meanStd(p.returns)

	var downSum float64
	var downCount int
	for _, r := range p.returns {
		if r < 0 {
			downSum += r * r
			downCount++
		}
	}
	if downCount == 0 {
		return 0
	}
	downside := math.Sqrt(downSum / float64(downCount))
	if downside == 0 {
		return 0
	}
	return mean / downside * math.Sqrt(annualizationFactor)
}

// CalmarRatio is total return over max drawdown.
func (p *Performance) CalmarRatio() float64 {
	if p.maxDrawdown == 0 {
		return 0
	}
	return p.TotalReturn() / p.maxDrawdown
}

func meanStd(values []float64) (mean, std float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	if n < 2 {
		return mean, 0
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(n-1))
}
