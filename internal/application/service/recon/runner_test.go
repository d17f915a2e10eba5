package recon

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reference "github.com/raptorfin/rtms/internal/domain/entity/reference"
	"github.com/raptorfin/rtms/internal/domain/entity/trading"
	"github.com/raptorfin/rtms/internal/domain/interfaces"
)

// fakeReferenceRepo serves the standard classification fixture.
type fakeReferenceRepo struct{}

func (fakeReferenceRepo) InstrumentTypes(context.Context) ([]reference.InstrumentType, error) {
	return []reference.InstrumentType{
		{ID: 1, Name: reference.InstrumentTypeStock, Multiplier: 1},
		{ID: 2, Name: reference.InstrumentTypeCall, Multiplier: 100},
		{ID: 3, Name: reference.InstrumentTypePut, Multiplier: 100},
	}, nil
}

func (fakeReferenceRepo) OrderTypes(context.Context) ([]reference.OrderType, error) {
	return []reference.OrderType{
		{ID: 1, Name: reference.OrderTypeBuyToOpen, Action: reference.ActionBuy},
		{ID: 2, Name: reference.OrderTypeBuyToClose, Action: reference.ActionBuy},
		{ID: 3, Name: reference.OrderTypeSellToOpen, Action: reference.ActionSell},
		{ID: 4, Name: reference.OrderTypeSellToClose, Action: reference.ActionSell},
	}, nil
}

func (fakeReferenceRepo) TradeTypes(context.Context) ([]reference.TradeType, error) {
	return []reference.TradeType{
		{ID: 1, Name: reference.TradeTypeLong},
		{ID: 2, Name: reference.TradeTypeShort},
	}, nil
}

func (fakeReferenceRepo) TradeStatuses(context.Context) ([]reference.TradeStatus, error) {
	return []reference.TradeStatus{
		{ID: 1, Name: reference.StatusOpen},
		{ID: 2, Name: reference.StatusClosed},
	}, nil
}

func (fakeReferenceRepo) OrderTradeTypeMappings(context.Context) ([]reference.OrderTradeTypeMapping, error) {
	return []reference.OrderTradeTypeMapping{
		{ID: 1, OrderTypeID: 1, TradeTypeID: 1},
		{ID: 2, OrderTypeID: 4, TradeTypeID: 1},
		{ID: 3, OrderTypeID: 3, TradeTypeID: 2},
		{ID: 4, OrderTypeID: 2, TradeTypeID: 2},
	}, nil
}

func (fakeReferenceRepo) Close() {}

// fakeStore is an in-memory trading repository tracking every write.
type fakeStore struct {
	instruments []trading.Instrument
	trades      []trading.Trade
	orders      []trading.Order
	nextID      int64

	instrumentWrites int
	groupSaves       int
}

func newFakeStore() *fakeStore { return &fakeStore{nextID: 1} }

func (s *fakeStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) Instruments(context.Context) ([]trading.Instrument, error) {
	out := make([]trading.Instrument, len(s.instruments))
	copy(out, s.instruments)
	return out, nil
}

func (s *fakeStore) InstrumentByName(_ context.Context, name string) (*trading.Instrument, error) {
	for i := range s.instruments {
		if s.instruments[i].Name == name {
			in := s.instruments[i]
			return &in, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (s *fakeStore) CreateInstrument(_ context.Context, in *trading.Instrument) error {
	s.instrumentWrites++
	for i := range s.instruments {
		if s.instruments[i].Name == in.Name {
			return interfaces.ErrDuplicateEntity
		}
	}
	in.ID = s.id()
	s.instruments = append(s.instruments, *in)
	return nil
}

func (s *fakeStore) TradesByStatus(_ context.Context, statusID int64) ([]trading.Trade, error) {
	var out []trading.Trade
	for i := range s.trades {
		if s.trades[i].Status != nil && s.trades[i].Status.ID == statusID {
			out = append(out, s.trades[i])
		}
	}
	return out, nil
}

func (s *fakeStore) CreateTrade(_ context.Context, t *trading.Trade) error {
	t.ID = s.id()
	s.trades = append(s.trades, *t)
	return nil
}

func (s *fakeStore) UpdateTrade(_ context.Context, t *trading.Trade) error {
	for i := range s.trades {
		if s.trades[i].ID == t.ID {
			s.trades[i] = *t
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *fakeStore) OrdersByTrade(_ context.Context, tradeID int64) ([]trading.Order, error) {
	var out []trading.Order
	for i := range s.orders {
		if s.orders[i].TradeID == tradeID {
			out = append(out, s.orders[i])
		}
	}
	return out, nil
}

func (s *fakeStore) CreateOrder(_ context.Context, o *trading.Order) error {
	for i := range s.orders {
		if s.orders[i].BrokerOrderID == o.BrokerOrderID {
			return interfaces.ErrDuplicateEntity
		}
	}
	o.ID = s.id()
	s.orders = append(s.orders, *o)
	return nil
}

func (s *fakeStore) UpdateOrder(_ context.Context, o *trading.Order) error {
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = *o
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *fakeStore) SaveTradeGroup(ctx context.Context, t *trading.Trade, orders []*trading.Order) error {
	s.groupSaves++
	if t.Persisted() {
		if err := s.UpdateTrade(ctx, t); err != nil {
			return err
		}
	} else if err := s.CreateTrade(ctx, t); err != nil {
		return err
	}
	for _, o := range orders {
		o.TradeID = t.ID
		if o.Persisted() {
			if err := s.UpdateOrder(ctx, o); err != nil {
				return err
			}
			continue
		}
		if err := s.CreateOrder(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) Close() {}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func line(overrides map[string]string) map[string]string {
	fields := map[string]string{
		"description":   "ACME CORP",
		"symbol":        "ACME",
		"orderID":       "100",
		"assetCategory": "STK",
		"putCall":       "",
		"quantity":      "10",
		"price":         "5.00",
		"commission":    "1.00",
		"code":          "O",
		"buySell":       "BUY",
		"dateTime":      "2026-08-28 15:30:00",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	return fields
}

func newTestRunner(t *testing.T, store *fakeStore) *Runner {
	t.Helper()

	r, err := NewRunner(context.Background(), fakeReferenceRepo{}, store, quietLogger())
	require.NoError(t, err)
	return r
}

func TestRunSingleBuyLineOpensTrade(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := newTestRunner(t, store)

	summary, err := r.Run(context.Background(), []map[string]string{line(nil)})
	require.NoError(t, err)
	assert.False(t, summary.Failed())
	assert.Equal(t, 1, summary.LinesProcessed)
	assert.Equal(t, 1, summary.TradesCreated)
	assert.Equal(t, 0, summary.TradesUpdated)
	assert.Equal(t, 1, summary.OrdersWritten)

	require.Len(t, store.instruments, 1)
	assert.Equal(t, "ACME CORP", store.instruments[0].Name)
	assert.Equal(t, reference.InstrumentTypeStock, store.instruments[0].Type.Name)

	require.Len(t, store.orders, 1)
	order := store.orders[0]
	assert.Equal(t, int64(100), order.BrokerOrderID)
	assert.Equal(t, int64(10), order.Quantity)
	assert.True(t, order.Price.Equal(decimal.RequireFromString("5.00")), "price = %s", order.Price)
	assert.True(t, order.Commission.Equal(decimal.RequireFromString("1.00")))

	require.Len(t, store.trades, 1)
	trade := store.trades[0]
	assert.Equal(t, "ACME CORP", trade.Name)
	assert.Equal(t, int64(10), trade.Quantity)
	assert.Equal(t, reference.TradeTypeLong, trade.Type.Name)
	assert.Equal(t, reference.StatusOpen, trade.Status.Name)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), trade.Date)
	assert.Equal(t, trade.ID, order.TradeID)
}

func TestRunMergesPartialFillsIntoOneOrder(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := newTestRunner(t, store)

	lines := []map[string]string{
		line(map[string]string{"orderID": "200", "quantity": "5", "price": "10.00", "commission": "0.50"}),
		line(map[string]string{"orderID": "200", "quantity": "5", "price": "20.00", "commission": "0.75", "dateTime": "2026-08-28 15:31:00"}),
	}
	summary, err := r.Run(context.Background(), lines)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.LinesProcessed)
	assert.Equal(t, 1, summary.OrdersWritten)

	require.Len(t, store.orders, 1)
	order := store.orders[0]
	assert.Equal(t, int64(10), order.Quantity)
	assert.True(t, order.Price.Equal(decimal.RequireFromString("15.00")), "price = %s", order.Price)
	assert.True(t, order.Commission.Equal(decimal.RequireFromString("1.25")), "commission = %s", order.Commission)

	require.Len(t, store.trades, 1)
	assert.Equal(t, int64(10), store.trades[0].Quantity)
}

func TestRunReusesKnownInstrument(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	stockType := reference.InstrumentType{ID: 1, Name: reference.InstrumentTypeStock, Multiplier: 1}
	require.NoError(t, store.CreateInstrument(context.Background(), &trading.Instrument{
		Name: "ACME CORP", Symbol: "ACME", Type: &stockType,
	}))
	store.instrumentWrites = 0

	r := newTestRunner(t, store)
	summary, err := r.Run(context.Background(), []map[string]string{line(nil)})
	require.NoError(t, err)
	assert.False(t, summary.Failed())

	assert.Equal(t, 0, store.instrumentWrites)
	assert.Len(t, store.instruments, 1)
}

func TestRunAttachesNewOrdersToOpenTrade(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ctx := context.Background()

	stockType := reference.InstrumentType{ID: 1, Name: reference.InstrumentTypeStock, Multiplier: 1}
	instrument := &trading.Instrument{Name: "ACME CORP", Symbol: "ACME", Type: &stockType}
	require.NoError(t, store.CreateInstrument(ctx, instrument))

	openTrade := &trading.Trade{
		Name:       "ACME CORP",
		Date:       time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		Instrument: instrument,
		Quantity:   10,
		Type:       &reference.TradeType{ID: 1, Name: reference.TradeTypeLong},
		Status:     &reference.TradeStatus{ID: 1, Name: reference.StatusOpen},
	}
	require.NoError(t, store.CreateTrade(ctx, openTrade))
	require.NoError(t, store.CreateOrder(ctx, &trading.Order{
		BrokerOrderID: 100,
		Date:          time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC),
		Instrument:    instrument,
		Quantity:      10,
		Price:         decimal.RequireFromString("5.00"),
		Commission:    decimal.RequireFromString("1.00"),
		Type:          &reference.OrderType{ID: 1, Name: reference.OrderTypeBuyToOpen, Action: reference.ActionBuy},
		TradeID:       openTrade.ID,
	}))

	r := newTestRunner(t, store)
	summary, err := r.Run(context.Background(), []map[string]string{
		line(map[string]string{"orderID": "101", "quantity": "5", "price": "6.00"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TradesCreated)
	assert.Equal(t, 1, summary.TradesUpdated)
	assert.Equal(t, 1, summary.OrdersWritten)

	require.Len(t, store.trades, 1)
	assert.Equal(t, int64(15), store.trades[0].Quantity)

	require.Len(t, store.orders, 2)
	assert.Equal(t, openTrade.ID, store.orders[1].TradeID)
}

func TestRunLeavesUntouchedOpenTradeAlone(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ctx := context.Background()

	stockType := reference.InstrumentType{ID: 1, Name: reference.InstrumentTypeStock, Multiplier: 1}
	instrument := &trading.Instrument{Name: "ACME CORP", Symbol: "ACME", Type: &stockType}
	require.NoError(t, store.CreateInstrument(ctx, instrument))
	openTrade := &trading.Trade{
		Name:       "ACME CORP",
		Instrument: instrument,
		Quantity:   10,
		Type:       &reference.TradeType{ID: 1, Name: reference.TradeTypeLong},
		Status:     &reference.TradeStatus{ID: 1, Name: reference.StatusOpen},
	}
	require.NoError(t, store.CreateTrade(ctx, openTrade))

	r := newTestRunner(t, store)
	summary, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, store.groupSaves)
	assert.Equal(t, 0, summary.TradesUpdated)
	require.Len(t, store.trades, 1)
	assert.Equal(t, int64(10), store.trades[0].Quantity)
}

func TestRunSkipsMalformedLinesAndKeepsGoing(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := newTestRunner(t, store)

	lines := []map[string]string{
		line(map[string]string{"quantity": "ten"}),
		line(map[string]string{"orderID": "101", "assetCategory": "FUT", "description": "WIDGET FUTURE"}),
		line(nil),
	}
	summary, err := r.Run(context.Background(), lines)
	require.NoError(t, err)

	assert.True(t, summary.Failed())
	assert.Equal(t, 2, summary.LinesSkipped)
	assert.Equal(t, 1, summary.LinesProcessed)
	require.Len(t, summary.SkipReasons, 2)
	assert.Contains(t, summary.SkipReasons[0], "line 1")
	assert.Contains(t, summary.SkipReasons[1], "line 2")

	// The valid line still reconciled.
	assert.Equal(t, 1, summary.TradesCreated)
	require.Len(t, store.orders, 1)
}

func TestRunDefersInstrumentsWithSellActivity(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := newTestRunner(t, store)

	lines := []map[string]string{
		line(nil),
		line(map[string]string{
			"description": "INITECH", "symbol": "INIT", "orderID": "300",
			"buySell": "SELL", "code": "C",
		}),
	}
	summary, err := r.Run(context.Background(), lines)
	require.NoError(t, err)

	assert.False(t, summary.Failed())
	assert.Equal(t, 1, summary.InstrumentsDeferred)
	assert.Equal(t, 1, summary.TradesCreated)

	// The deferred instrument produced no trade or order rows.
	require.Len(t, store.trades, 1)
	assert.Equal(t, "ACME CORP", store.trades[0].Name)
	require.Len(t, store.orders, 1)
	assert.Equal(t, int64(100), store.orders[0].BrokerOrderID)
}

func TestRunOptionLineUsesOptionClassification(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := newTestRunner(t, store)

	summary, err := r.Run(context.Background(), []map[string]string{
		line(map[string]string{
			"description":   "ACME 19SEP26 45.0 C",
			"assetCategory": "OPT",
			"putCall":       "C",
			"quantity":      "2",
			"price":         "1.25",
		}),
	})
	require.NoError(t, err)
	assert.False(t, summary.Failed())

	require.Len(t, store.instruments, 1)
	assert.Equal(t, reference.InstrumentTypeCall, store.instruments[0].Type.Name)
}
