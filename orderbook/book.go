// Package orderbook implements the incremental two-sided priority book:
// spec.md §4.2. A Book is fixed to one MatchingMode at construction, which
// selects the intra-price tie-break (spec.md's priority table) both sides
// use.
package orderbook

import (
	"sort"

	"fairorder/clock"
	"fairorder/domain"
)

// Book maintains resting orders on two sides under one priority discipline.
// It assumes every event handed to ProcessOrder/ProcessBatch is a NEW
// event that has already passed submit-time validation — CANCEL routing is
// the Matcher's job (see matching.Matcher), mirroring the original
// OrderBook::process_order/process_batch, which only ever construct a
// resting Order from an event and match it; cancellation lived outside the
// matching path there too.
type Book struct {
	mode  domain.MatchingMode
	bids  *priceSide // buy side: higher price is better
	asks  *priceSide // sell side: lower price is better
	clock clock.Clock
}

// New constructs a Book fixed to mode, reading execution times from clk.
func New(mode domain.MatchingMode, clk clock.Clock) *Book {
	less := secondaryLess(mode)
	return &Book{
		mode:  mode,
		bids:  newPriceSide(true, less),
		asks:  newPriceSide(false, less),
		clock: clk,
	}
}

// secondaryLess is the within-price-level priority comparator for mode:
// order_id ascending for FAIR, recv_time ascending (order_id breaking a
// tie) for NAIVE. It is an invariant of every priceSide a Book owns, applied
// on every insertion, so it holds globally over all resting orders at a
// price — not just within whichever batch most recently sorted them.
func secondaryLess(mode domain.MatchingMode) func(a, b *domain.Order) bool {
	if mode == domain.LatencyFairBatched {
		return func(a, b *domain.Order) bool { return a.OrderID < b.OrderID }
	}
	return func(a, b *domain.Order) bool {
		if a.RecvTime != b.RecvTime {
			return a.RecvTime < b.RecvTime
		}
		return a.OrderID < b.OrderID
	}
}

// Mode returns the discipline this Book was constructed with.
func (b *Book) Mode() domain.MatchingMode { return b.mode }

// BestBid returns the best resting buy price, 0 if the side is empty.
func (b *Book) BestBid() int64 { return b.bids.BestPrice() }

// BestAsk returns the best resting sell price, 0 if the side is empty.
func (b *Book) BestAsk() int64 { return b.asks.BestPrice() }

// BuyDepth returns the number of resting buy orders.
func (b *Book) BuyDepth() int { return b.bids.Count() }

// SellDepth returns the number of resting sell orders.
func (b *Book) SellDepth() int { return b.asks.Count() }

// BidDepth returns up to maxLevels bid price levels, best first.
func (b *Book) BidDepth(maxLevels int) []DepthLevel { return b.bids.Depth(maxLevels) }

// AskDepth returns up to maxLevels ask price levels, best first.
func (b *Book) AskDepth(maxLevels int) []DepthLevel { return b.asks.Depth(maxLevels) }

// Clear empties both sides.
func (b *Book) Clear() {
	b.bids.Clear()
	b.asks.Clear()
}

// Cancel removes a resting order by id, trying both sides. Reports whether
// an order was found and removed; a miss is not an error (spec.md §7: a
// CANCEL referencing a non-resting order is silently ignored).
func (b *Book) Cancel(orderID uint64) bool {
	if b.bids.Remove(orderID) {
		return true
	}
	return b.asks.Remove(orderID)
}

// ProcessOrder runs the single-order match-then-rest algorithm for one NEW
// event: spec.md §4.2's numbered matching algorithm.
func (b *Book) ProcessOrder(ev domain.OrderEvent, traderID int) []domain.Trade {
	order := domain.NewOrder(ev, traderID)
	return b.matchOrder(order)
}

// ProcessBatch sorts the batch by the Book's active discipline (spec.md
// §4.3's priority table, applied across the whole batch rather than just
// within one price) and then applies ProcessOrder semantics to each event
// in the sorted sequence in turn.
func (b *Book) ProcessBatch(events []domain.OrderEvent, traderIDs []int) []domain.Trade {
	n := len(events)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	less := batchLess(events, b.mode)
	sort.SliceStable(order, func(i, j int) bool { return less(order[i], order[j]) })

	var trades []domain.Trade
	for _, idx := range order {
		trades = append(trades, b.ProcessOrder(events[idx], traderIDs[idx])...)
	}
	return trades
}

// batchLess returns a less-than function over event indices implementing
// spec.md's per-mode batch sort: grouped by side (buys ahead of sells,
// matching the original engine's sort), then by price in the direction
// that is most aggressive for that side, then by the mode's secondary key.
func batchLess(events []domain.OrderEvent, mode domain.MatchingMode) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Side != b.Side {
			return a.Side == domain.SideBuy
		}
		if a.Price != b.Price {
			if a.Side == domain.SideBuy {
				return a.Price > b.Price
			}
			return a.Price < b.Price
		}
		if mode == domain.LatencyFairBatched {
			return a.OrderID < b.OrderID
		}
		if a.RecvTime != b.RecvTime {
			return a.RecvTime < b.RecvTime
		}
		// spec.md §9: identical recv_time breaks further by order_id ascending.
		return a.OrderID < b.OrderID
	}
}

func (b *Book) matchOrder(order *domain.Order) []domain.Trade {
	var opposite, own *priceSide
	if order.Side == domain.SideBuy {
		opposite, own = b.asks, b.bids
	} else {
		opposite, own = b.bids, b.asks
	}

	var trades []domain.Trade
	for order.RemainingQty > 0 && !opposite.Empty() {
		maker := opposite.PeekBest()
		if maker == nil {
			break
		}
		if order.Side == domain.SideBuy && maker.Price > order.Price {
			break
		}
		if order.Side == domain.SideSell && maker.Price < order.Price {
			break
		}

		opposite.PopBest()

		qty := order.RemainingQty
		if maker.RemainingQty < qty {
			qty = maker.RemainingQty
		}
		execTime := b.clock.Now()

		var trade domain.Trade
		if order.Side == domain.SideBuy {
			trade = domain.Trade{
				BuyOrderID: order.OrderID, SellOrderID: maker.OrderID,
				Price: maker.Price, Qty: qty, ExecutionTime: execTime,
				BuyTraderID: order.TraderID, SellTraderID: maker.TraderID,
			}
		} else {
			trade = domain.Trade{
				BuyOrderID: maker.OrderID, SellOrderID: order.OrderID,
				Price: maker.Price, Qty: qty, ExecutionTime: execTime,
				BuyTraderID: maker.TraderID, SellTraderID: order.TraderID,
			}
		}
		trades = append(trades, trade)

		order.RemainingQty -= qty
		maker.RemainingQty -= qty
		if maker.RemainingQty > 0 {
			opposite.ReinsertFront(maker)
		}
	}

	if order.RemainingQty > 0 {
		own.InsertNew(order)
	}

	return trades
}
