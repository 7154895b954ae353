// Package engine is the core facade spec.md §6 describes: it owns a
// Batcher and a Matcher, and exposes submit/try_flush/force_flush/
// process_immediate/set_mode/reset/set_window to an external driver. The
// driver is responsible for serialising all calls into one Engine — the
// core itself holds no lock, per spec.md §5.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"fairorder/batching"
	"fairorder/clock"
	"fairorder/domain"
	"fairorder/matching"
	"fairorder/metrics"
	"fairorder/orderbook"
)

// Engine is a value owning a Batcher, a Matcher (and through it a Book and
// Metrics), and the Clock they read execution times from. A driver
// instantiates and discards Engines freely — nothing here is a process-wide
// singleton, per spec.md §9's "global singleton avoidance" note.
type Engine struct {
	batcher      *batching.Batcher
	matcher      *matching.Matcher
	clock        clock.Clock
	log          *zap.Logger
	lastRecvTime int64
	haveRecv     bool
}

// Config is the construction-time configuration spec.md §6 recognises.
type Config struct {
	WindowNs int64
	Mode     domain.MatchingMode
	Clock    clock.Clock       // optional; defaults to clock.NewMonotonic()
	Logger   *zap.Logger       // optional; defaults to a no-op logger
}

// New constructs an Engine from cfg.
func New(cfg Config) *Engine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewMonotonic()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		batcher: batching.New(cfg.WindowNs),
		matcher: matching.New(cfg.Mode, clk, log),
		clock:   clk,
		log:     log,
	}
}

// Submit validates and enqueues ev into the Batcher. Rejected events never
// enter the buffer: spec.md §7.
func (e *Engine) Submit(ev domain.OrderEvent) error {
	if err := e.validate(ev); err != nil {
		e.log.Warn("rejected event", zap.Uint64("order_id", ev.OrderID), zap.Error(err))
		return err
	}
	e.lastRecvTime = ev.RecvTime
	e.haveRecv = true
	e.batcher.Submit(ev)
	return nil
}

func (e *Engine) validate(ev domain.OrderEvent) error {
	if ev.Type == domain.EventNew && ev.Qty <= 0 {
		return fmt.Errorf("%w: non-positive qty %d on NEW order_id=%d", domain.ErrInvalidEvent, ev.Qty, ev.OrderID)
	}
	if ev.OrderID == 0 {
		return fmt.Errorf("%w: zero order_id", domain.ErrInvalidEvent)
	}
	if e.haveRecv && ev.RecvTime < e.lastRecvTime {
		return fmt.Errorf("%w: recv_time %d moves backwards from %d", domain.ErrInvalidEvent, ev.RecvTime, e.lastRecvTime)
	}
	return nil
}

// TryFlush pops and processes a batch if the Batcher has one ready,
// returning the trades it produced. Returns nil, false if no batch was
// ready.
func (e *Engine) TryFlush(traderIDs []int) ([]domain.Trade, bool) {
	if !e.batcher.HasReadyBatch() {
		return nil, false
	}
	return e.flush(traderIDs), true
}

// ForceFlush pops and processes whatever the Batcher holds, even below the
// window threshold. Used at shutdown or whenever the driver wants to drain
// remaining events; returns nil if nothing was pending.
func (e *Engine) ForceFlush(traderIDs []int) []domain.Trade {
	if e.batcher.Pending() == 0 {
		return nil
	}
	return e.flush(traderIDs)
}

func (e *Engine) flush(traderIDs []int) []domain.Trade {
	batch := e.batcher.PopBatch()
	return e.matcher.ProcessBatch(batch, traderIDs)
}

// ProcessImmediate is the direct, unbatched NAIVE-mode path: spec.md §6.
// It validates ev exactly as Submit does but bypasses the Batcher entirely,
// so it never participates in competition attribution (spec.md §9).
func (e *Engine) ProcessImmediate(ev domain.OrderEvent, traderID int) error {
	if err := e.validate(ev); err != nil {
		e.log.Warn("rejected event", zap.Uint64("order_id", ev.OrderID), zap.Error(err))
		return err
	}
	e.lastRecvTime = ev.RecvTime
	e.haveRecv = true
	e.matcher.ProcessImmediate(ev, traderID)
	return nil
}

// SetMode changes the active discipline, rebuilding the Book and resetting
// Metrics. Any pending batch is discarded, since the two disciplines
// maintain incompatible priority orderings of resting orders (spec.md
// §4.3).
func (e *Engine) SetMode(mode domain.MatchingMode) error {
	if err := e.matcher.SetMode(mode); err != nil {
		return err
	}
	e.batcher.DiscardPending()
	return nil
}

// GetMode returns the active discipline.
func (e *Engine) GetMode() domain.MatchingMode { return e.matcher.Mode() }

// Reset reinitialises the Book and Metrics, preserving the configured
// window and mode, and discards any pending batch.
func (e *Engine) Reset() {
	e.matcher.Reset()
	e.batcher.DiscardPending()
	e.lastRecvTime = 0
	e.haveRecv = false
}

// SetWindow changes the batching window, discarding any pending batch.
func (e *Engine) SetWindow(windowNs int64) {
	e.batcher.SetWindow(windowNs)
}

// Book returns the current order book for snapshot reads.
func (e *Engine) Book() *orderbook.Book { return e.matcher.Book() }

// Metrics returns the fairness telemetry.
func (e *Engine) Metrics() *metrics.Metrics { return e.matcher.Metrics() }

// PendingEvents returns how many events the Batcher holds, unflushed.
func (e *Engine) PendingEvents() int { return e.batcher.Pending() }
