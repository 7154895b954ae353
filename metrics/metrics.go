// Package metrics implements the fairness telemetry the Matcher feeds with
// trade and competition-attribution events: spec.md §4.4.
package metrics

import (
	"fairorder/domain"
)

// TradeRecord is one entry of the append-only trade history.
type TradeRecord struct {
	BuyTraderID   int
	SellTraderID  int
	Price         int64
	Qty           int64
	ExecutionTime int64
	WasCollision  bool
}

type traderCounters struct {
	ordersSubmitted int
	ordersExecuted  int
	tradesWon       int
	tradesLost      int
	latencyNs       int64
}

// ParticipantStats is a point-in-time snapshot of one trader's counters,
// per spec.md §3.
type ParticipantStats struct {
	TraderID        int
	OrdersSubmitted int
	OrdersExecuted  int
	TradesWon       int
	TradesLost      int
	LatencyNs       int64
	WinRate         float64
	ExecutionRate   float64
}

// Recorder is an optional egress sink a Metrics instance mirrors every
// counter mutation into. See metrics.PrometheusRecorder.
type Recorder interface {
	OrderSubmitted(traderID int)
	OrderExecuted(traderID int)
	TradeWon(traderID int)
	TradeLost(traderID int)
}

// Metrics accumulates per-participant counters and derives the aggregate
// fairness indicators spec.md §4.4 defines. It owns the trader counter map
// and the trade history log exclusively; it is mutated only by a Matcher.
type Metrics struct {
	traders  map[int]*traderCounters
	history  []TradeRecord
	recorder Recorder
}

// New constructs an empty Metrics.
func New() *Metrics {
	return &Metrics{traders: make(map[int]*traderCounters)}
}

// SetRecorder attaches an optional egress mirror. Pass nil to detach.
func (m *Metrics) SetRecorder(r Recorder) {
	m.recorder = r
}

func (m *Metrics) counters(traderID int) *traderCounters {
	c, ok := m.traders[traderID]
	if !ok {
		c = &traderCounters{}
		m.traders[traderID] = c
	}
	return c
}

// SetParticipantLatency records a trader's configured artificial latency,
// the input latency_advantage_reduction needs (spec.md §4.4).
func (m *Metrics) SetParticipantLatency(traderID int, latencyNs int64) {
	m.counters(traderID).latencyNs = latencyNs
}

// RecordSubmission increments orders_submitted for traderID.
func (m *Metrics) RecordSubmission(traderID int) {
	m.counters(traderID).ordersSubmitted++
	if m.recorder != nil {
		m.recorder.OrderSubmitted(traderID)
	}
}

// RecordTrade logs a Trade into the history and increments orders_executed
// once for the buyer and once for the seller, per spec.md §4.4.
func (m *Metrics) RecordTrade(t domain.Trade, wasCollision bool) {
	m.history = append(m.history, TradeRecord{
		BuyTraderID:   t.BuyTraderID,
		SellTraderID:  t.SellTraderID,
		Price:         t.Price,
		Qty:           t.Qty,
		ExecutionTime: t.ExecutionTime,
		WasCollision:  wasCollision,
	})
	m.recordExecution(t.BuyTraderID)
	m.recordExecution(t.SellTraderID)
}

func (m *Metrics) recordExecution(traderID int) {
	m.counters(traderID).ordersExecuted++
	if m.recorder != nil {
		m.recorder.OrderExecuted(traderID)
	}
}

// RecordWin credits traderID with one competition win.
func (m *Metrics) RecordWin(traderID int) {
	m.counters(traderID).tradesWon++
	if m.recorder != nil {
		m.recorder.TradeWon(traderID)
	}
}

// RecordLoss charges traderID with one competition loss.
func (m *Metrics) RecordLoss(traderID int) {
	m.counters(traderID).tradesLost++
	if m.recorder != nil {
		m.recorder.TradeLost(traderID)
	}
}

// WinRate is trades_won / (trades_won + trades_lost), 0 when undefined.
func (m *Metrics) WinRate(traderID int) float64 {
	c, ok := m.traders[traderID]
	if !ok {
		return 0
	}
	total := c.tradesWon + c.tradesLost
	if total == 0 {
		return 0
	}
	return float64(c.tradesWon) / float64(total)
}

// ExecutionRate is orders_executed / orders_submitted, 0 when undefined.
func (m *Metrics) ExecutionRate(traderID int) float64 {
	c, ok := m.traders[traderID]
	if !ok || c.ordersSubmitted == 0 {
		return 0
	}
	return float64(c.ordersExecuted) / float64(c.ordersSubmitted)
}

// FairnessIndex is 1 minus the spread between the highest and lowest win
// rate, taken over traders with at least one contested trade; 0 when no
// trader has any. Range [0, 1]; 1 means every contested trader's win rate
// is identical.
func (m *Metrics) FairnessIndex() float64 {
	min, max, any := m.winRateRange()
	if !any {
		return 0
	}
	return 1 - (max - min)
}

func (m *Metrics) winRateRange() (min, max float64, any bool) {
	min, max = 1, 0
	for id, c := range m.traders {
		total := c.tradesWon + c.tradesLost
		if total == 0 {
			continue
		}
		rate := m.WinRate(id)
		if !any || rate < min {
			min = rate
		}
		if !any || rate > max {
			max = rate
		}
		any = true
	}
	return min, max, any
}

// LatencyAdvantageReduction measures how close the fastest and slowest
// configured traders (by SetParticipantLatency) trade to a 50% win rate —
// 1.0 means neither's configured latency conferred any advantage. Returns
// 0 when fewer than two traders have a configured latency, or when either
// extreme has no contested trades.
func (m *Metrics) LatencyAdvantageReduction() float64 {
	fastest, slowest, ok := m.latencyExtremes()
	if !ok {
		return 0
	}
	fastTotal := fastest.tradesWon + fastest.tradesLost
	slowTotal := slowest.tradesWon + slowest.tradesLost
	if fastTotal == 0 || slowTotal == 0 {
		return 0
	}
	fastRate := float64(fastest.tradesWon) / float64(fastTotal)
	slowRate := float64(slowest.tradesWon) / float64(slowTotal)
	dFast := abs(fastRate - 0.5)
	dSlow := abs(slowRate - 0.5)
	return 1 - (dFast+dSlow)/2
}

func (m *Metrics) latencyExtremes() (fastest, slowest *traderCounters, ok bool) {
	configured := 0
	for _, c := range m.traders {
		if c.latencyNs == 0 {
			continue
		}
		configured++
		if fastest == nil || c.latencyNs < fastest.latencyNs {
			fastest = c
		}
		if slowest == nil || c.latencyNs > slowest.latencyNs {
			slowest = c
		}
	}
	if configured < 2 || fastest == slowest {
		return nil, nil, false
	}
	return fastest, slowest, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Stats returns a snapshot of every trader's current counters.
func (m *Metrics) Stats() []ParticipantStats {
	out := make([]ParticipantStats, 0, len(m.traders))
	for id, c := range m.traders {
		out = append(out, ParticipantStats{
			TraderID:        id,
			OrdersSubmitted: c.ordersSubmitted,
			OrdersExecuted:  c.ordersExecuted,
			TradesWon:       c.tradesWon,
			TradesLost:      c.tradesLost,
			LatencyNs:       c.latencyNs,
			WinRate:         m.WinRate(id),
			ExecutionRate:   m.ExecutionRate(id),
		})
	}
	return out
}

// TradeHistory returns a defensive copy of the trade log, for the trade
// history iterator egress spec.md §6 names.
func (m *Metrics) TradeHistory() []TradeRecord {
	out := make([]TradeRecord, len(m.history))
	copy(out, m.history)
	return out
}

// Reset clears all counters and history.
func (m *Metrics) Reset() {
	m.traders = make(map[int]*traderCounters)
	m.history = nil
}
