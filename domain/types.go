// Package domain holds the wire-free value types the matching core operates
// on: events arriving from outside, the resting-book representation derived
// from them, and the immutable trade records the core emits.
package domain

// Side is which side of the book an order rests on or a trade leg belongs to.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "BUY"
	}
	return "SELL"
}

// EventType distinguishes a new resting order from a cancellation request.
type EventType int

const (
	EventNew EventType = iota
	EventCancel
)

// MatchingMode selects the priority discipline a Book enforces. See
// spec.md §4.2 for the full comparator table.
type MatchingMode int

const (
	// NaivePriceTime is conventional price-time priority: within a price
	// level, the earliest recv_time wins, ties broken by order_id.
	NaivePriceTime MatchingMode = iota
	// LatencyFairBatched neutralises arrival-time advantage within a
	// batch: within a price level, the smallest order_id wins outright.
	LatencyFairBatched
)

func (m MatchingMode) String() string {
	switch m {
	case NaivePriceTime:
		return "NAIVE_PRICE_TIME"
	case LatencyFairBatched:
		return "LATENCY_FAIR_BATCHED"
	default:
		return "UNKNOWN"
	}
}

// OrderEvent is the input record a driver submits to the core. Once
// BatchID is stamped non-zero by the Batcher it must never change.
type OrderEvent struct {
	Type       EventType
	OrderID    uint64
	Instrument string
	Side       Side
	Price      int64
	Qty        int64
	RecvTime   int64
	BatchID    uint64
	TraderID   int
}

// Order is the resting-book representation of an accepted NEW OrderEvent.
// It is owned exclusively by the Book from insertion until fully consumed.
type Order struct {
	OrderID      uint64
	Side         Side
	Price        int64
	Qty          int64
	RemainingQty int64
	RecvTime     int64
	BatchID      uint64
	TraderID     int
}

// NewOrder derives a resting Order from an accepted NEW event. traderID is
// used only as a fallback when the event itself carries no trader
// identity (TraderID == 0) — mirrors the original engine's
// `ev.trader_id != 0 ? ev.trader_id : trader_id` fallback.
func NewOrder(ev OrderEvent, traderID int) *Order {
	tid := ev.TraderID
	if tid == 0 {
		tid = traderID
	}
	return &Order{
		OrderID:      ev.OrderID,
		Side:         ev.Side,
		Price:        ev.Price,
		Qty:          ev.Qty,
		RemainingQty: ev.Qty,
		RecvTime:     ev.RecvTime,
		BatchID:      ev.BatchID,
		TraderID:     tid,
	}
}

// Trade is an immutable execution record. Price is always the maker
// (resting order)'s price at the moment of the match.
type Trade struct {
	BuyOrderID    uint64
	SellOrderID   uint64
	Price         int64
	Qty           int64
	ExecutionTime int64
	BuyTraderID   int
	SellTraderID  int
}
