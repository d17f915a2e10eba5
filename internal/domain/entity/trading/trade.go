package trading

import (
	"time"

	"github.com/raptorfin/rtms/internal/domain/entity/reference"
)

// Trade is the aggregate position in one instrument, built from one or
// more orders and open until explicitly closed. Name is unique among
// trades dated the same calendar day.
type Trade struct {
	ID         int64
	Name       string
	Date       time.Time
	Instrument *Instrument
	Quantity   int64
	Type       *reference.TradeType
	Status     *reference.TradeStatus
}

// Persisted reports whether storage has assigned the trade an id.
func (t *Trade) Persisted() bool { return t.ID != 0 }
