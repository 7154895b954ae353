package orderbook

import (
	"container/list"

	"fairorder/domain"
)

// priceLevel holds every resting order at one price, kept in priority
// order by the Book's secondary key (recv_time ascending for NAIVE,
// order_id ascending for FAIR) — a global invariant of the level, not an
// artifact of the sequence orders happened to arrive in. insertSorted is
// the only way an order enters the list, so the ordering holds across
// batches as well as within one.
type priceLevel struct {
	price  int64
	orders *list.List
	volume int64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price, orders: list.New()}
}

func (l *priceLevel) front() *domain.Order {
	if l.orders.Len() == 0 {
		return nil
	}
	return l.orders.Front().Value.(*domain.Order)
}

// insertSorted walks the list for the first existing order that order
// belongs ahead of under less, and inserts there; appends at the back if
// order belongs after everything already resting.
func (l *priceLevel) insertSorted(order *domain.Order, less func(a, b *domain.Order) bool) *list.Element {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		if less(order, e.Value.(*domain.Order)) {
			return l.orders.InsertBefore(order, e)
		}
	}
	return l.orders.PushBack(order)
}
