package instruments

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reference "github.com/raptorfin/rtms/internal/domain/entity/reference"
	"github.com/raptorfin/rtms/internal/domain/entity/trading"
	"github.com/raptorfin/rtms/internal/domain/interfaces"
)

// fakeTradingRepo backs the directory with an in-memory instrument table
// and counts writes.
type fakeTradingRepo struct {
	stored  []trading.Instrument
	nextID  int64
	creates int
}

func newFakeTradingRepo(seed ...trading.Instrument) *fakeTradingRepo {
	r := &fakeTradingRepo{nextID: 1}
	for _, in := range seed {
		in.ID = r.nextID
		r.nextID++
		r.stored = append(r.stored, in)
	}
	return r
}

func (r *fakeTradingRepo) Instruments(context.Context) ([]trading.Instrument, error) {
	out := make([]trading.Instrument, len(r.stored))
	copy(out, r.stored)
	return out, nil
}

func (r *fakeTradingRepo) InstrumentByName(_ context.Context, name string) (*trading.Instrument, error) {
	for i := range r.stored {
		if r.stored[i].Name == name {
			in := r.stored[i]
			return &in, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeTradingRepo) CreateInstrument(_ context.Context, in *trading.Instrument) error {
	r.creates++
	for i := range r.stored {
		if r.stored[i].Name == in.Name {
			return interfaces.ErrDuplicateEntity
		}
	}
	in.ID = r.nextID
	r.nextID++
	r.stored = append(r.stored, *in)
	return nil
}

func (r *fakeTradingRepo) TradesByStatus(context.Context, int64) ([]trading.Trade, error) {
	return nil, nil
}

func (r *fakeTradingRepo) CreateTrade(context.Context, *trading.Trade) error { return nil }
func (r *fakeTradingRepo) UpdateTrade(context.Context, *trading.Trade) error { return nil }
func (r *fakeTradingRepo) CreateOrder(context.Context, *trading.Order) error { return nil }
func (r *fakeTradingRepo) UpdateOrder(context.Context, *trading.Order) error { return nil }

func (r *fakeTradingRepo) OrdersByTrade(context.Context, int64) ([]trading.Order, error) {
	return nil, nil
}

func (r *fakeTradingRepo) SaveTradeGroup(context.Context, *trading.Trade, []*trading.Order) error {
	return nil
}

func (r *fakeTradingRepo) Close() {}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

var stockType = &reference.InstrumentType{ID: 1, Name: reference.InstrumentTypeStock, Multiplier: 1}

func TestNewDirectoryPreloadsStoredInstruments(t *testing.T) {
	t.Parallel()

	repo := newFakeTradingRepo(trading.Instrument{Name: "ACME CORP", Symbol: "ACME", Type: stockType})

	d, err := NewDirectory(context.Background(), repo, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())

	in, ok := d.Lookup("ACME CORP")
	require.True(t, ok)
	assert.Equal(t, "ACME", in.Symbol)
}

func TestGetOrCreatePersistsAtMostOnce(t *testing.T) {
	t.Parallel()

	repo := newFakeTradingRepo()
	d, err := NewDirectory(context.Background(), repo, quietLogger())
	require.NoError(t, err)

	first, err := d.GetOrCreate(context.Background(), "ACME CORP", "ACME", stockType)
	require.NoError(t, err)
	require.True(t, first.Persisted())

	second, err := d.GetOrCreate(context.Background(), "ACME CORP", "ACME", stockType)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.creates)
}

func TestGetOrCreateDuplicateFallsBackToStoredRow(t *testing.T) {
	t.Parallel()

	repo := newFakeTradingRepo()
	d, err := NewDirectory(context.Background(), repo, quietLogger())
	require.NoError(t, err)

	// Another writer created the row after our preload.
	concurrent := &trading.Instrument{Name: "ACME CORP", Symbol: "ACME", Type: stockType}
	require.NoError(t, repo.CreateInstrument(context.Background(), concurrent))
	repo.creates = 0

	in, err := d.GetOrCreate(context.Background(), "ACME CORP", "ACME", stockType)
	require.NoError(t, err)

	assert.Equal(t, concurrent.ID, in.ID)
	assert.Equal(t, 1, repo.creates)

	// Now cached: no further storage traffic.
	again, err := d.GetOrCreate(context.Background(), "ACME CORP", "ACME", stockType)
	require.NoError(t, err)
	assert.Same(t, in, again)
	assert.Equal(t, 1, repo.creates)
}
