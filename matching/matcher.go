// Package matching implements the Matcher: it drives a Book according to
// the active MatchingMode, hands resulting trades to Metrics, and performs
// the collision/competition-attribution spec.md §4.3 defines.
package matching

import (
	"go.uber.org/zap"

	"fairorder/clock"
	"fairorder/domain"
	"fairorder/metrics"
	"fairorder/orderbook"
)

// Matcher orchestrates one Book/Metrics pair. It never touches the Book
// concurrently with anything else — spec.md §5 assigns that exclusion
// contract to whatever single driver owns the Matcher.
type Matcher struct {
	mode    domain.MatchingMode
	book    *orderbook.Book
	metrics *metrics.Metrics
	clock   clock.Clock
	log     *zap.Logger
}

// New constructs a Matcher in the given mode.
func New(mode domain.MatchingMode, clk clock.Clock, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{
		mode:    mode,
		book:    orderbook.New(mode, clk),
		metrics: metrics.New(),
		clock:   clk,
		log:     log,
	}
}

// Mode returns the active discipline.
func (m *Matcher) Mode() domain.MatchingMode { return m.mode }

// Book returns the Book this Matcher drives, for read-only snapshot access
// (best bid/ask, depth).
func (m *Matcher) Book() *orderbook.Book { return m.book }

// Metrics returns the fairness telemetry this Matcher feeds.
func (m *Matcher) Metrics() *metrics.Metrics { return m.metrics }

// ProcessImmediate is the direct, unbatched NAIVE-mode path named in
// spec.md §6: it forwards a single event straight to the Book and records
// its trades, but — per spec.md §9's accepted gap — it performs no
// competition attribution, since attribution needs a batch to group by
// (price, side).
func (m *Matcher) ProcessImmediate(ev domain.OrderEvent, traderID int) {
	m.metrics.RecordSubmission(traderID)
	if ev.Type == domain.EventCancel {
		m.book.Cancel(ev.OrderID)
		return
	}
	trades := m.book.ProcessOrder(ev, traderID)
	for _, t := range trades {
		m.metrics.RecordTrade(t, false)
	}
}

// ProcessBatch drives a whole batch through the Book and performs
// competition attribution across it: spec.md §4.3.
//
// CANCEL events in the batch are routed straight to Book.Cancel and
// excluded from both the Book's price-priority sort and from attribution —
// the original engine's OrderBook never branched on event type at all, only
// ever constructing a resting Order to match; CANCEL handling belongs one
// layer up, here.
func (m *Matcher) ProcessBatch(events []domain.OrderEvent, traderIDs []int) []domain.Trade {
	newEvents := make([]domain.OrderEvent, 0, len(events))
	newTraders := make([]int, 0, len(events))

	for i, ev := range events {
		m.metrics.RecordSubmission(traderIDs[i])
		if ev.Type == domain.EventCancel {
			m.book.Cancel(ev.OrderID)
			continue
		}
		newEvents = append(newEvents, ev)
		newTraders = append(newTraders, traderIDs[i])
	}

	trades := m.book.ProcessBatch(newEvents, newTraders)
	for _, t := range trades {
		m.metrics.RecordTrade(t, false)
	}

	m.attribute(newEvents, newTraders)

	if len(events) > 0 {
		m.log.Info("processed batch",
			zap.Uint64("batch_id", events[0].BatchID),
			zap.Int("events", len(events)),
			zap.Int("trades", len(trades)),
		)
	}
	return trades
}

// competitionGroup is the set of events sharing one (price, side) within a
// batch, tracked alongside each event's trader for win/loss attribution.
type competitionGroup struct {
	events  []domain.OrderEvent
	traders []int
}

// attribute groups newEvents by (price, side) and, for every group with two
// or more members, credits one winner and charges every other member a
// loss: spec.md §4.3.
func (m *Matcher) attribute(events []domain.OrderEvent, traderIDs []int) {
	groups := make(map[groupKey]*competitionGroup)
	for i, ev := range events {
		key := groupKey{price: ev.Price, side: ev.Side}
		g, ok := groups[key]
		if !ok {
			g = &competitionGroup{}
			groups[key] = g
		}
		g.events = append(g.events, ev)
		g.traders = append(g.traders, traderIDs[i])
	}

	for _, g := range groups {
		if len(g.events) < 2 {
			continue
		}
		winnerIdx := m.winnerIndex(g.events)
		for i := range g.events {
			if i == winnerIdx {
				m.metrics.RecordWin(g.traders[i])
			} else {
				m.metrics.RecordLoss(g.traders[i])
			}
		}
	}
}

type groupKey struct {
	price int64
	side  domain.Side
}

// winnerIndex picks the winning member of a contested (price, side) group:
// FAIR mode credits the smallest order_id; NAIVE mode credits the smallest
// recv_time, ties broken by order_id ascending (spec.md §9).
func (m *Matcher) winnerIndex(events []domain.OrderEvent) int {
	best := 0
	for i := 1; i < len(events); i++ {
		if m.beats(events[i], events[best]) {
			best = i
		}
	}
	return best
}

func (m *Matcher) beats(a, b domain.OrderEvent) bool {
	if m.mode == domain.LatencyFairBatched {
		return a.OrderID < b.OrderID
	}
	if a.RecvTime != b.RecvTime {
		return a.RecvTime < b.RecvTime
	}
	return a.OrderID < b.OrderID
}

// SetMode rebuilds the Book and resets Metrics for a new discipline:
// spec.md §4.3's mode switch. Any in-flight batch is the caller's
// responsibility to have already flushed or discarded. The prior Book and
// Metrics simply become unreachable and are reclaimed by the garbage
// collector — spec.md §9's "pointer-free ownership" guidance translated
// into idiomatic Go: there is no manual release to perform.
func (m *Matcher) SetMode(mode domain.MatchingMode) error {
	if !domain.ValidMode(mode) {
		return domain.ErrUnknownMode
	}
	m.mode = mode
	m.book = orderbook.New(mode, m.clock)
	m.metrics.Reset()
	m.log.Info("matching mode changed", zap.String("mode", mode.String()))
	return nil
}

// Reset reinitialises the Book and Metrics, preserving the active mode.
func (m *Matcher) Reset() {
	m.book = orderbook.New(m.mode, m.clock)
	m.metrics.Reset()
	m.log.Info("matcher reset", zap.String("mode", m.mode.String()))
}
