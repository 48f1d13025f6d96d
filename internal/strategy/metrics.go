package strategy

import (
	"main/internal/schema"
)

// Metrics is a strategy's own trade accounting, updated once per
// completed trade.
type Metrics struct {
	TotalPnL        schema.Notional
	TotalTrades     uint32
	WinningTrades   uint32
	LosingTrades    uint32
	MaxDrawdown     schema.Notional
	CurrentDrawdown schema.Notional
	WinRate         float64
	AvgWin          schema.Notional
	AvgLoss         schema.Notional
	ProfitFactor    float64

	MaxConsecutiveWins   uint32
	MaxConsecutiveLosses uint32
	consecutiveWins      uint32
	consecutiveLosses    uint32

	AvgTradeDurationSecs float64
}

// RecordTrade folds one completed trade into the running aggregates.
func (m *Metrics) RecordTrade(pnl schema.Notional, durationSecs float64) {
	m.TotalTrades++
	m.TotalPnL += pnl

	if pnl > 0 {
		m.WinningTrades++
		m.AvgWin = schema.Notional(
			(int64(m.AvgWin)*int64(m.WinningTrades-1) + int64(pnl)) / int64(m.WinningTrades))
		m.consecutiveWins++
		m.consecutiveLosses = 0
		if m.consecutiveWins > m.MaxConsecutiveWins {
			m.MaxConsecutiveWins = m.consecutiveWins
		}
	} else {
		m.LosingTrades++
		loss := pnl
		if loss < 0 {
			loss = -loss
		}
		m.AvgLoss = schema.Notional(
			(int64(m.AvgLoss)*int64(m.LosingTrades-1) + int64(loss)) / int64(m.LosingTrades))
		m.consecutiveLosses++
		m.consecutiveWins = 0
		if m.consecutiveLosses > m.MaxConsecutiveLosses {
			m.MaxConsecutiveLosses = m.consecutiveLosses
		}
	}

	m.AvgTradeDurationSecs = (m.AvgTradeDurationSecs*float64(m.TotalTrades-1) +
		durationSecs) / float64(m.TotalTrades)

	// drawdown tracks cumulative P&L lows; max is monotonic
	if m.TotalPnL < m.CurrentDrawdown {
		m.CurrentDrawdown = m.TotalPnL
		if m.CurrentDrawdown < m.MaxDrawdown {
			m.MaxDrawdown = m.CurrentDrawdown
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	m.updateProfitFactor()
}

func (m *Metrics) updateProfitFactor() {
	grossProfit := int64(m.AvgWin) * int64(m.WinningTrades)
	grossLoss := int64(m.AvgLoss) * int64(m.LosingTrades)
	if grossLoss > 0 {
		m.ProfitFactor = float64(grossProfit) / float64(grossLoss)
	}
}

// Reset clears all aggregates.
func (m *Metrics) Reset() { *m = Metrics{} }
