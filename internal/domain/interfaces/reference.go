package interfaces

import (
	"context"

	"github.com/raptorfin/rtms/internal/domain/entity/reference"
)

// ReferenceRepository reads the fixed classification tables. All five are
// fetch-all: the tables are small and read-only during a run.
type ReferenceRepository interface {
	InstrumentTypes(ctx context.Context) ([]reference.InstrumentType, error)
	OrderTypes(ctx context.Context) ([]reference.OrderType, error)
	TradeTypes(ctx context.Context) ([]reference.TradeType, error)
	TradeStatuses(ctx context.Context) ([]reference.TradeStatus, error)
	OrderTradeTypeMappings(ctx context.Context) ([]reference.OrderTradeTypeMapping, error)
	Close()
}
