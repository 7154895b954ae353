package domain

import "errors"

// Error kinds the core surface can return. Callers should test with
// errors.Is against these sentinels rather than string-matching messages.
var (
	// ErrInvalidEvent is returned when submit rejects an event: a
	// non-positive qty on a NEW event, a zero order_id, or a recv_time
	// that moves backwards relative to the most recently submitted event.
	ErrInvalidEvent = errors.New("domain: invalid event")

	// ErrUnknownMode is returned when set_mode is called with an
	// unrecognised MatchingMode. The prior mode is retained.
	ErrUnknownMode = errors.New("domain: unknown matching mode")
)

// ValidMode reports whether m is one of the recognised matching modes.
func ValidMode(m MatchingMode) bool {
	return m == NaivePriceTime || m == LatencyFairBatched
}
