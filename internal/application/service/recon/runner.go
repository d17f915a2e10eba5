package recon

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	instrsvc "github.com/raptorfin/rtms/internal/application/service/instruments"
	orderssvc "github.com/raptorfin/rtms/internal/application/service/orders"
	refsvc "github.com/raptorfin/rtms/internal/application/service/reference"
	tradessvc "github.com/raptorfin/rtms/internal/application/service/trades"
	feedentity "github.com/raptorfin/rtms/internal/domain/entity/feed"
	domain "github.com/raptorfin/rtms/internal/domain/entity/trading"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

// Summary reports the outcome of one reconciliation run.
type Summary struct {
	RunID               uuid.UUID
	LinesProcessed      int
	LinesSkipped        int
	SkipReasons         []string
	TradesCreated       int
	TradesUpdated       int
	OrdersWritten       int
	InstrumentsDeferred int
}

// Failed reports whether any feed line or instrument group could not be
// reconciled. Deferred sell-side instruments do not count: deferring them
// is the designed behavior, not a failure.
func (s *Summary) Failed() bool {
	return s.LinesSkipped > 0
}

func (s *Summary) Fields() logrus.Fields {
	return logrus.Fields{
		"run_id":               s.RunID,
		"lines_processed":      s.LinesProcessed,
		"lines_skipped":        s.LinesSkipped,
		"trades_created":       s.TradesCreated,
		"trades_updated":       s.TradesUpdated,
		"orders_written":       s.OrdersWritten,
		"instruments_deferred": s.InstrumentsDeferred,
	}
}

// Runner drives one daily reconciliation: it owns the per-run caches and
// folds the parsed feed through them into storage.
type Runner struct {
	resolver   *refsvc.Resolver
	directory  *instrsvc.Directory
	aggregator *orderssvc.Aggregator
	book       *tradessvc.Book
	repo       interfaces.TradingRepository
	logger     *logrus.Entry
}

// NewRunner builds the per-run caches and primes the order aggregator
// with the open trades' existing orders.
func NewRunner(ctx context.Context, refRepo interfaces.ReferenceRepository, tradingRepo interfaces.TradingRepository, logger *logrus.Logger) (*Runner, error) {
	resolver, err := refsvc.Load(ctx, refRepo)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	directory, err := instrsvc.NewDirectory(ctx, tradingRepo, logger)
	if err != nil {
		return nil, err
	}
	book, err := tradessvc.OpenBook(ctx, tradingRepo, resolver, logger)
	if err != nil {
		return nil, err
	}
	aggregator := orderssvc.NewAggregator(tradingRepo, logger)
	if err := aggregator.PreloadOpenTrades(ctx, book.Open()); err != nil {
		return nil, err
	}

	return &Runner{
		resolver:   resolver,
		directory:  directory,
		aggregator: aggregator,
		book:       book,
		repo:       tradingRepo,
		logger:     logger.WithField("component", "recon_runner"),
	}, nil
}

// Run folds every feed line into the caches, then persists the resulting
// trade groups. Classification and malformed-line failures skip the line;
// storage failures abort the run with no partial commit of the group in
// progress.
func (r *Runner) Run(ctx context.Context, lines []map[string]string) (*Summary, error) {
	summary := &Summary{RunID: uuid.New()}
	logger := r.logger.WithField("run_id", summary.RunID)

	for i, fields := range lines {
		if err := r.fold(ctx, fields); err != nil {
			if !isLineError(err) {
				return summary, fmt.Errorf("line %d: %w", i+1, err)
			}
			summary.LinesSkipped++
			summary.SkipReasons = append(summary.SkipReasons, fmt.Sprintf("line %d: %v", i+1, err))
			logger.WithField("line", i+1).WithError(err).Warn("skipping feed line")
			continue
		}
		summary.LinesProcessed++
	}

	if err := r.aggregator.FinalizeAll(); err != nil {
		return summary, err
	}

	for _, group := range r.aggregator.GroupByInstrumentAndAction() {
		if len(group.Sells) > 0 {
			summary.InstrumentsDeferred++
			logger.WithField("instrument", group.Instrument.Name).Warn("sell-side activity present, reconciliation deferred")
			continue
		}
		if err := r.commitGroup(ctx, group, summary, logger); err != nil {
			if !isLineError(err) {
				return summary, err
			}
			summary.LinesSkipped++
			summary.SkipReasons = append(summary.SkipReasons, fmt.Sprintf("instrument %s: %v", group.Instrument.Name, err))
			logger.WithField("instrument", group.Instrument.Name).WithError(err).Warn("skipping instrument group")
		}
	}

	logger.WithFields(summary.Fields()).Info("reconciliation run finished")
	return summary, nil
}

// fold processes one feed line: decode, classify, resolve or create the
// instrument, and merge the fill. Every failure leaves the caches exactly
// as they were.
func (r *Runner) fold(ctx context.Context, fields map[string]string) error {
	confirm, err := feedentity.ParseConfirm(fields)
	if err != nil {
		return err
	}
	orderType, err := r.resolver.OrderType(confirm.Code, confirm.BuySell)
	if err != nil {
		return err
	}
	instrument, ok := r.directory.Lookup(confirm.Description)
	if !ok {
		itype, err := r.resolver.InstrumentType(confirm.AssetCategory, confirm.PutCall)
		if err != nil {
			return err
		}
		instrument, err = r.directory.GetOrCreate(ctx, confirm.Description, confirm.Symbol, itype)
		if err != nil {
			return err
		}
	}
	fill := domain.Fill{Price: confirm.Price, Quantity: confirm.Quantity, Commission: confirm.Commission}
	r.aggregator.Fold(confirm.BrokerOrderID, confirm.DateTime, fill, instrument, orderType)
	return nil
}

// commitGroup attaches an instrument's buy orders to its open trade and
// persists the group as one unit. Orders already committed in an earlier
// run are rewritten only if they accumulated new fills.
func (r *Runner) commitGroup(ctx context.Context, group orderssvc.InstrumentOrders, summary *Summary, logger *logrus.Entry) error {
	var pending []*domain.Order
	var added int64
	for _, o := range group.Buys {
		if o.Persisted() {
			if r.aggregator.Dirty(o.BrokerOrderID) {
				pending = append(pending, o)
			}
			continue
		}
		pending = append(pending, o)
		added += o.Quantity
	}
	if len(pending) == 0 {
		return nil
	}

	trade, err := r.book.GetOrOpen(group.Buys[0])
	if err != nil {
		return err
	}
	existed := trade.Persisted()
	if existed {
		trade.Quantity += added
	} else {
		trade.Quantity = added
	}

	if err := r.repo.SaveTradeGroup(ctx, trade, pending); err != nil {
		return fmt.Errorf("persist trade %q: %w", trade.Name, err)
	}
	if existed {
		summary.TradesUpdated++
	} else {
		summary.TradesCreated++
	}
	summary.OrdersWritten += len(pending)
	logger.WithFields(logrus.Fields{
		"trade":  trade.Name,
		"orders": len(pending),
	}).Info("trade group persisted")
	return nil
}

// isLineError distinguishes failures fatal to one line or group from
// failures fatal to the run.
func isLineError(err error) bool {
	var malformed *feedentity.MalformedLineError
	var unmapped *refsvc.UnmappedClassificationError
	return errors.As(err, &malformed) || errors.As(err, &unmapped)
}
