package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	reference "github.com/raptorfin/rtms/internal/domain/entity/reference"
	domain "github.com/raptorfin/rtms/internal/domain/entity/trading"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

// entry pairs a merged order with its build-time fill accumulator.
type entry struct {
	order *domain.Order
	fills *domain.FillAccumulator
}

// Aggregator is a broker-order-id-keyed index that collapses repeated
// fill lines into single orders. Insertion order is preserved so grouping
// and finalization iterate deterministically.
type Aggregator struct {
	repo    interfaces.TradingRepository
	logger  *logrus.Entry
	entries map[int64]*entry
	seq     []int64
}

func NewAggregator(repo interfaces.TradingRepository, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		repo:    repo,
		logger:  logger.WithField("component", "order_aggregator"),
		entries: make(map[int64]*entry),
		seq:     nil,
	}
}

// Fold merges one fill line into the index. The first fill seen for a
// broker order id defines the order's instrument, date and type; later
// fills only extend the accumulator.
func (a *Aggregator) Fold(brokerOrderID int64, date time.Time, fill domain.Fill, instrument *domain.Instrument, orderType *reference.OrderType) *domain.Order {
	if e, ok := a.entries[brokerOrderID]; ok {
		e.fills.Append(fill)
		return e.order
	}
	e := &entry{
		order: &domain.Order{
			BrokerOrderID: brokerOrderID,
			Date:          date,
			Instrument:    instrument,
			Type:          orderType,
		},
		fills: &domain.FillAccumulator{},
	}
	e.fills.Append(fill)
	a.entries[brokerOrderID] = e
	a.seq = append(a.seq, brokerOrderID)
	return e.order
}

// PreloadOpenTrades inserts the previously persisted orders of every open
// trade, keyed by broker order id with empty accumulators: their weighted
// fields are already final, and a later feed line for one of these ids
// must reuse the entry instead of creating a new order.
func (a *Aggregator) PreloadOpenTrades(ctx context.Context, trades []*domain.Trade) error {
	for _, t := range trades {
		orders, err := a.repo.OrdersByTrade(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("load orders for trade %q: %w", t.Name, err)
		}
		for i := range orders {
			o := orders[i]
			if _, ok := a.entries[o.BrokerOrderID]; ok {
				continue
			}
			a.entries[o.BrokerOrderID] = &entry{order: &o, fills: &domain.FillAccumulator{}}
			a.seq = append(a.seq, o.BrokerOrderID)
		}
		a.logger.WithFields(logrus.Fields{"trade": t.Name, "orders": len(orders)}).Debug("primed orders from open trade")
	}
	return nil
}

// Dirty reports whether the broker order id accumulated fills this run.
func (a *Aggregator) Dirty(brokerOrderID int64) bool {
	e, ok := a.entries[brokerOrderID]
	return ok && e.fills.Len() > 0
}

// Finalize sets the order's scalar fields from its accumulator: price to
// the volume-weighted average, quantity and commission to the sums. The
// accumulator stays the single source of truth until this point.
func (a *Aggregator) Finalize(brokerOrderID int64) error {
	e, ok := a.entries[brokerOrderID]
	if !ok {
		return fmt.Errorf("broker order %d not in aggregator", brokerOrderID)
	}
	price, err := e.fills.WeightedPrice()
	if err != nil {
		return fmt.Errorf("broker order %d: %w", brokerOrderID, err)
	}
	e.order.Price = price
	e.order.Quantity = e.fills.Quantity()
	e.order.Commission = e.fills.Commission()
	return nil
}

// FinalizeAll finalizes every order that accumulated fills this run.
// Primed orders without new fills keep their stored scalars.
func (a *Aggregator) FinalizeAll() error {
	for _, id := range a.seq {
		if a.entries[id].fills.Len() == 0 {
			continue
		}
		if err := a.Finalize(id); err != nil {
			return err
		}
	}
	return nil
}

// InstrumentOrders partitions one instrument's orders by order-type
// action.
type InstrumentOrders struct {
	Instrument *domain.Instrument
	Buys       []*domain.Order
	Sells      []*domain.Order
}

// GroupByInstrumentAndAction partitions the aggregated orders per
// instrument and action, preserving first-seen order on both levels.
func (a *Aggregator) GroupByInstrumentAndAction() []InstrumentOrders {
	index := make(map[string]int)
	var groups []InstrumentOrders

	for _, id := range a.seq {
		e := a.entries[id]
		name := e.order.Instrument.Name
		gi, ok := index[name]
		if !ok {
			groups = append(groups, InstrumentOrders{Instrument: e.order.Instrument})
			gi = len(groups) - 1
			index[name] = gi
		}
		switch e.order.Type.Action {
		case reference.ActionBuy:
			groups[gi].Buys = append(groups[gi].Buys, e.order)
		case reference.ActionSell:
			groups[gi].Sells = append(groups[gi].Sells, e.order)
		default:
			a.logger.WithFields(logrus.Fields{
				"broker_order_id": id,
				"action":          string(e.order.Type.Action),
			}).Warn("order type has unknown action, excluded from grouping")
		}
	}
	return groups
}

// Len reports how many distinct broker order ids the index holds.
func (a *Aggregator) Len() int {
	return len(a.entries)
}
