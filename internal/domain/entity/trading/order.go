package trading

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raptorfin/rtms/internal/domain/entity/reference"
)

// ErrNoFills is returned when a weighted price is requested from an
// accumulator whose fills cannot define one.
var ErrNoFills = errors.New("weighted price undefined without fills")

// Fill is one execution record contributing to an order.
type Fill struct {
	Price      decimal.Decimal
	Quantity   int64
	Commission decimal.Decimal
}

// FillAccumulator collects the fills of one broker order id while the feed
// is replayed. It is build-time state only: the order's scalar fields stay
// untouched until finalization, and the accumulator is discarded after.
type FillAccumulator struct {
	fills []Fill
}

// Append adds one fill.
func (a *FillAccumulator) Append(f Fill) {
	a.fills = append(a.fills, f)
}

// Len reports how many fills accumulated this run.
func (a *FillAccumulator) Len() int {
	return len(a.fills)
}

// Quantity is the sum of fill quantities.
func (a *FillAccumulator) Quantity() int64 {
	var total int64
	for _, f := range a.fills {
		total += f.Quantity
	}
	return total
}

// Commission is the sum of fill commissions, sign kept as reported.
func (a *FillAccumulator) Commission() decimal.Decimal {
	total := decimal.Zero
	for _, f := range a.fills {
		total = total.Add(f.Commission)
	}
	return total
}

// WeightedPrice is the quantity-weighted average execution price,
// sum(price*qty)/sum(qty). Exact decimal sums make the result invariant
// under fill reordering.
func (a *FillAccumulator) WeightedPrice() (decimal.Decimal, error) {
	if len(a.fills) == 0 {
		return decimal.Zero, ErrNoFills
	}
	notional := decimal.Zero
	var quantity int64
	for _, f := range a.fills {
		notional = notional.Add(f.Price.Mul(decimal.NewFromInt(f.Quantity)))
		quantity += f.Quantity
	}
	if quantity == 0 {
		return decimal.Zero, ErrNoFills
	}
	return notional.Div(decimal.NewFromInt(quantity)), nil
}

// Order is the persisted shape of one broker order: the merge of every
// fill line sharing its broker order id. Quantity, Price and Commission
// are meaningful only after finalization.
type Order struct {
	ID            int64
	BrokerOrderID int64
	Date          time.Time
	Instrument    *Instrument
	Quantity      int64
	Price         decimal.Decimal
	Commission    decimal.Decimal
	Type          *reference.OrderType
	TradeID       int64
}

// Persisted reports whether storage has assigned the order an id.
func (o *Order) Persisted() bool { return o.ID != 0 }

// Assigned reports whether the order belongs to a persisted trade.
func (o *Order) Assigned() bool { return o.TradeID != 0 }
