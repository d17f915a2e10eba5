package instruments

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	reference "github.com/raptorfin/rtms/internal/domain/entity/reference"
	domain "github.com/raptorfin/rtms/internal/domain/entity/trading"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

// Directory is a name-keyed in-memory index of known instruments,
// preloaded from storage at construction.
type Directory struct {
	repo   interfaces.TradingRepository
	byName map[string]*domain.Instrument
	logger *logrus.Entry
}

// NewDirectory loads every stored instrument into the index.
func NewDirectory(ctx context.Context, repo interfaces.TradingRepository, logger *logrus.Logger) (*Directory, error) {
	all, err := repo.Instruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instruments: %w", err)
	}
	d := &Directory{
		repo:   repo,
		byName: make(map[string]*domain.Instrument, len(all)),
		logger: logger.WithField("component", "instrument_directory"),
	}
	for i := range all {
		d.byName[all[i].Name] = &all[i]
	}
	return d, nil
}

// Lookup returns the cached instrument for name, if any.
func (d *Directory) Lookup(name string) (*domain.Instrument, bool) {
	in, ok := d.byName[name]
	return in, ok
}

// GetOrCreate returns the cached instrument unchanged, or persists and
// indexes a new one. A duplicate report from storage is benign: the row
// is re-fetched and cached instead.
func (d *Directory) GetOrCreate(ctx context.Context, name, symbol string, itype *reference.InstrumentType) (*domain.Instrument, error) {
	if in, ok := d.byName[name]; ok {
		return in, nil
	}
	in := &domain.Instrument{Name: name, Symbol: symbol, Type: itype}
	if err := d.repo.CreateInstrument(ctx, in); err != nil {
		if !errors.Is(err, interfaces.ErrDuplicateEntity) {
			return nil, fmt.Errorf("create instrument %q: %w", name, err)
		}
		d.logger.WithField("instrument", name).Debug("duplicate entry, reusing stored instrument")
		existing, lookupErr := d.repo.InstrumentByName(ctx, name)
		if lookupErr != nil {
			return nil, fmt.Errorf("re-fetch duplicate instrument %q: %w", name, lookupErr)
		}
		in = existing
	}
	d.byName[name] = in
	return in, nil
}

// Len reports how many instruments the index holds.
func (d *Directory) Len() int {
	return len(d.byName)
}
