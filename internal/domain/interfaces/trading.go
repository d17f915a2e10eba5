package interfaces

import (
	"context"

	"github.com/raptorfin/rtms/internal/domain/entity/trading"
)

// TradingRepository persists instruments, trades and orders. Create
// methods assign the storage id to the passed entity; uniqueness
// violations surface as ErrDuplicateEntity.
type TradingRepository interface {
	Instruments(ctx context.Context) ([]trading.Instrument, error)
	InstrumentByName(ctx context.Context, name string) (*trading.Instrument, error)
	CreateInstrument(ctx context.Context, instrument *trading.Instrument) error

	TradesByStatus(ctx context.Context, statusID int64) ([]trading.Trade, error)
	CreateTrade(ctx context.Context, trade *trading.Trade) error
	UpdateTrade(ctx context.Context, trade *trading.Trade) error

	OrdersByTrade(ctx context.Context, tradeID int64) ([]trading.Order, error)
	CreateOrder(ctx context.Context, order *trading.Order) error
	UpdateOrder(ctx context.Context, order *trading.Order) error

	// SaveTradeGroup persists a trade and its orders as one unit: the
	// trade is inserted or updated first, every order takes its id, and
	// a failure anywhere rolls the whole group back.
	SaveTradeGroup(ctx context.Context, trade *trading.Trade, orders []*trading.Order) error

	Close()
}
