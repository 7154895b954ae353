package orderbook

import (
	"container/list"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"fairorder/domain"
)

// priceSide is one side (bids or asks) of a Book: a price-ordered tree of
// priceLevels, each kept ordered by the Book's secondary priority key.
// Grounded on the teacher's ShardedPriceTree /
// datastructure_bench_test.go RedBlackTree, which drive an
// emirpasic/gods/v2 red-black tree keyed by price with a descending or
// ascending comparator depending on the side — this keeps that exact
// dependency and comparator idiom, without the bucket-sharding layer the
// teacher adds purely for its own benchmark: a single book here rarely
// holds enough live price levels to need it.
type priceSide struct {
	comparator func(a, b int64) int
	less       func(a, b *domain.Order) bool
	tree       *rbt.Tree[int64, *priceLevel]
	elems      map[uint64]*list.Element
	prices     map[uint64]int64
	count      int
}

// newPriceSide builds one side of the book. less is the active discipline's
// secondary priority comparator (order_id ascending for FAIR, recv_time
// then order_id ascending for NAIVE) — every insertion, whether a brand new
// resting order or a partially-filled maker going back in, is placed by
// this comparator, so priority within a level is a property of the book,
// not of arrival order across batches.
func newPriceSide(descending bool, less func(a, b *domain.Order) bool) *priceSide {
	cmp := priceComparator(descending)
	return &priceSide{
		comparator: cmp,
		less:       less,
		tree:       rbt.NewWith[int64, *priceLevel](cmp),
		elems:      make(map[uint64]*list.Element),
		prices:     make(map[uint64]int64),
	}
}

func priceComparator(descending bool) func(a, b int64) int {
	return func(a, b int64) int {
		switch {
		case a == b:
			return 0
		case descending:
			if a > b {
				return -1
			}
			return 1
		default:
			if a < b {
				return -1
			}
			return 1
		}
	}
}

func (s *priceSide) Empty() bool { return s.tree.Empty() }

func (s *priceSide) Count() int { return s.count }

// BestPrice returns the best resting price, or 0 (the documented absence
// sentinel, spec.md §6) when the side holds no orders.
func (s *priceSide) BestPrice() int64 {
	node := s.tree.Left()
	if node == nil {
		return 0
	}
	return node.Key
}

func (s *priceSide) bestLevel() *priceLevel {
	node := s.tree.Left()
	if node == nil {
		return nil
	}
	return node.Value
}

// PeekBest returns the best resting order without removing it.
func (s *priceSide) PeekBest() *domain.Order {
	lvl := s.bestLevel()
	if lvl == nil {
		return nil
	}
	return lvl.front()
}

// PopBest removes and returns the best resting order.
func (s *priceSide) PopBest() *domain.Order {
	lvl := s.bestLevel()
	if lvl == nil || lvl.orders.Len() == 0 {
		return nil
	}
	front := lvl.orders.Front()
	order := front.Value.(*domain.Order)
	lvl.orders.Remove(front)
	lvl.volume -= order.RemainingQty
	delete(s.elems, order.OrderID)
	delete(s.prices, order.OrderID)
	s.count--
	if lvl.orders.Len() == 0 {
		s.tree.Remove(lvl.price)
	}
	return order
}

func (s *priceSide) insert(order *domain.Order) {
	lvl, found := s.tree.Get(order.Price)
	if !found {
		lvl = newPriceLevel(order.Price)
		s.tree.Put(order.Price, lvl)
	}
	elem := lvl.insertSorted(order, s.less)
	lvl.volume += order.RemainingQty
	s.elems[order.OrderID] = elem
	s.prices[order.OrderID] = order.Price
	s.count++
}

// InsertNew rests a freshly-taken order at its priority-ordered position
// within its price level.
func (s *priceSide) InsertNew(order *domain.Order) {
	s.insert(order)
}

// ReinsertFront restores a partially-filled maker to its price level after
// a match. Despite the name, the order goes back to its priority-ordered
// position, not literally the front — its priority key (recv_time/order_id)
// is unchanged, so sorted insertion places it correctly whether or not
// other orders arrived at this level in between.
func (s *priceSide) ReinsertFront(order *domain.Order) {
	s.insert(order)
}

// Remove deletes a resting order by id, wherever it sits in its price
// level's priority-ordered list. Reports whether an order was found.
func (s *priceSide) Remove(orderID uint64) bool {
	price, ok := s.prices[orderID]
	if !ok {
		return false
	}
	elem := s.elems[orderID]
	lvl, found := s.tree.Get(price)
	if !found {
		return false
	}
	order := elem.Value.(*domain.Order)
	lvl.orders.Remove(elem)
	lvl.volume -= order.RemainingQty
	delete(s.elems, orderID)
	delete(s.prices, orderID)
	s.count--
	if lvl.orders.Len() == 0 {
		s.tree.Remove(price)
	}
	return true
}

// Depth returns up to maxLevels price levels, best first, as (price,
// aggregate volume, resting order count) triples.
func (s *priceSide) Depth(maxLevels int) []DepthLevel {
	if maxLevels <= 0 || s.tree.Empty() {
		return nil
	}
	out := make([]DepthLevel, 0, maxLevels)
	it := s.tree.Iterator()
	for it.Next() && len(out) < maxLevels {
		lvl := it.Value()
		out = append(out, DepthLevel{Price: lvl.price, Volume: lvl.volume, Orders: lvl.orders.Len()})
	}
	return out
}

// Clear empties the side. A fresh tree is built with the stored comparator
// rather than mutating the old one in place, keeping the scoped-replace
// semantics spec.md §5 asks for on reset/mode switch.
func (s *priceSide) Clear() {
	s.tree = rbt.NewWith[int64, *priceLevel](s.comparator)
	s.elems = make(map[uint64]*list.Element)
	s.prices = make(map[uint64]int64)
	s.count = 0
}

// DepthLevel is one row of order book depth.
type DepthLevel struct {
	Price  int64
	Volume int64
	Orders int
}
