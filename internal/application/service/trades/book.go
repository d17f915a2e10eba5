package trades

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	refsvc "github.com/raptorfin/rtms/internal/application/service/reference"
	reference "github.com/raptorfin/rtms/internal/domain/entity/reference"
	domain "github.com/raptorfin/rtms/internal/domain/entity/trading"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

// Book is a name-keyed in-memory index of currently open trades. At most
// one open trade exists per instrument, so the instrument name is the key.
type Book struct {
	resolver   *refsvc.Resolver
	statusOpen *reference.TradeStatus
	byName     map[string]*domain.Trade
	seq        []*domain.Trade
	logger     *logrus.Entry
}

// OpenBook resolves the Open status (its absence is fatal) and loads the
// open trades. Zero open trades is a clean start, not an error.
func OpenBook(ctx context.Context, repo interfaces.TradingRepository, resolver *refsvc.Resolver, logger *logrus.Logger) (*Book, error) {
	statusOpen, err := resolver.Status(reference.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("resolve open status: %w", err)
	}
	rows, err := repo.TradesByStatus(ctx, statusOpen.ID)
	if err != nil {
		return nil, fmt.Errorf("load open trades: %w", err)
	}

	b := &Book{
		resolver:   resolver,
		statusOpen: statusOpen,
		byName:     make(map[string]*domain.Trade, len(rows)),
		logger:     logger.WithField("component", "trade_book"),
	}
	for i := range rows {
		t := &rows[i]
		b.byName[t.Name] = t
		b.seq = append(b.seq, t)
	}
	if len(rows) == 0 {
		b.logger.Info("no open trades, starting with an empty book")
	}
	return b, nil
}

// Open returns the open trades in load order.
func (b *Book) Open() []*domain.Trade {
	return b.seq
}

// GetOrOpen returns the open trade for the order's instrument, or
// constructs and indexes a new skeleton: named after the instrument,
// dated on the order's calendar day, classified via the order-type
// mapping. The caller persists it.
func (b *Book) GetOrOpen(order *domain.Order) (*domain.Trade, error) {
	name := order.Instrument.Name
	if t, ok := b.byName[name]; ok {
		return t, nil
	}
	tradeType, err := b.resolver.TradeType(order.Type)
	if err != nil {
		return nil, err
	}
	t := &domain.Trade{
		Name:       name,
		Date:       dayOf(order.Date),
		Instrument: order.Instrument,
		Quantity:   order.Quantity,
		Type:       tradeType,
		Status:     b.statusOpen,
	}
	b.byName[name] = t
	b.seq = append(b.seq, t)
	return t, nil
}

func dayOf(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}
