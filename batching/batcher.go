// Package batching implements the micro-batching state machine that
// partitions an event stream into fixed-window batches: spec.md §4.1.
package batching

import "fairorder/domain"

// Batcher accumulates submitted events and signals when a time window has
// elapsed. It is a pure data structure: it never rejects input and never
// fails, and it holds at most one pending batch at a time.
//
// Readiness is driven by event recv_time, not wall-clock polling, so a
// Batcher replays deterministically given the same event trace — this is
// the property spec.md §4.1 calls out as the whole point of measuring
// against the arrival timeline instead of a ticker.
type Batcher struct {
	windowNs     int64
	buffer       []domain.OrderEvent
	batchStartNs int64
	nextBatchID  uint64
}

// New constructs a Batcher with the given window, in nanoseconds.
func New(windowNs int64) *Batcher {
	return &Batcher{
		windowNs:    windowNs,
		nextBatchID: 1,
	}
}

// Window returns the configured batch window in nanoseconds.
func (b *Batcher) Window() int64 {
	return b.windowNs
}

// SetWindow changes the batching window. Any pending batch is discarded —
// the caller is expected to have flushed first if it cared about those
// events; spec.md §6 assigns that discard behaviour to set_window.
func (b *Batcher) SetWindow(windowNs int64) {
	b.windowNs = windowNs
	b.buffer = nil
	b.batchStartNs = 0
}

// Submit appends ev to the pending buffer. Events must arrive in
// non-decreasing recv_time order; the Batcher does not re-sort on submit.
// If the buffer was empty, ev.RecvTime becomes the new batch_start_ns.
func (b *Batcher) Submit(ev domain.OrderEvent) {
	if len(b.buffer) == 0 {
		b.batchStartNs = ev.RecvTime
	}
	b.buffer = append(b.buffer, ev)
}

// HasReadyBatch reports whether the buffer is non-empty and the most
// recently submitted event's recv_time has advanced the window's length
// past batch_start_ns.
func (b *Batcher) HasReadyBatch() bool {
	if len(b.buffer) == 0 {
		return false
	}
	last := b.buffer[len(b.buffer)-1]
	return last.RecvTime-b.batchStartNs >= b.windowNs
}

// PopBatch stamps every buffered event with the current batch id,
// increments the id counter, empties the buffer, and returns the stamped
// sequence in submission order. It is callable even when HasReadyBatch is
// false — that forces an early flush, used at shutdown (spec.md §6
// force_flush) or whenever the driver wants to drain remaining events.
func (b *Batcher) PopBatch() []domain.OrderEvent {
	if len(b.buffer) == 0 {
		return nil
	}
	out := b.buffer
	id := b.nextBatchID
	for i := range out {
		out[i].BatchID = id
	}
	b.nextBatchID++
	b.buffer = nil
	b.batchStartNs = 0
	return out
}

// Pending returns the number of events currently buffered, unflushed.
func (b *Batcher) Pending() int {
	return len(b.buffer)
}

// DiscardPending drops any buffered, unflushed events without touching the
// configured window — used by Engine.Reset/SetMode, which must discard an
// in-flight batch while leaving window_ns untouched.
func (b *Batcher) DiscardPending() {
	b.buffer = nil
	b.batchStartNs = 0
}
