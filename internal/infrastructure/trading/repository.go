package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	reference "github.com/raptorfin/rtms/internal/domain/entity/reference"
	domain "github.com/raptorfin/rtms/internal/domain/entity/trading"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

const uniqueViolationCode = "23505"

// Repository persists instruments, trades and orders in Postgres. Driver
// failures are translated at this boundary: unique-constraint violations
// become interfaces.ErrDuplicateEntity, missing rows become
// interfaces.ErrNotFound.
type Repository struct {
	pool *pgxpool.Pool
}

var _ interfaces.TradingRepository = (*Repository)(nil)

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, interfaces.ErrDuplicateEntity)
	}
	return err
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *Repository) withTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Instruments

const instrumentSelect = `
	SELECT i.id, i.name, i.symbol, it.id, it.name, it.multiplier
	FROM instruments i
	JOIN instrument_types it ON it.id = i.instrument_type_id`

func scanInstrumentInto(row pgx.Row, instrument *domain.Instrument) error {
	var itype reference.InstrumentType
	if err := row.Scan(&instrument.ID, &instrument.Name, &instrument.Symbol,
		&itype.ID, &itype.Name, &itype.Multiplier); err != nil {
		return err
	}
	instrument.Type = &itype
	return nil
}

func (r *Repository) Instruments(ctx context.Context) ([]domain.Instrument, error) {
	query := instrumentSelect + ` ORDER BY i.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query instruments: %w", err)
	}
	defer rows.Close()

	var out []domain.Instrument
	for rows.Next() {
		var in domain.Instrument
		if err := scanInstrumentInto(rows, &in); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *Repository) InstrumentByName(ctx context.Context, name string) (*domain.Instrument, error) {
	query := instrumentSelect + ` WHERE i.name = $1`

	instrument := &domain.Instrument{}
	if err := scanInstrumentInto(r.pool.QueryRow(ctx, query, name), instrument); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("instrument %q: %w", name, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("query instrument by name: %w", err)
	}
	return instrument, nil
}

func (r *Repository) CreateInstrument(ctx context.Context, instrument *domain.Instrument) error {
	if instrument == nil {
		return errors.New("instrument is nil")
	}
	const query = `
		INSERT INTO instruments (name, symbol, instrument_type_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	row := r.pool.QueryRow(ctx, query, instrument.Name, instrument.Symbol, instrument.Type.ID)
	if err := row.Scan(&instrument.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// Trades

func (r *Repository) TradesByStatus(ctx context.Context, statusID int64) ([]domain.Trade, error) {
	const query = `
		SELECT t.id, t.name, t.date, t.quantity,
		       i.id, i.name, i.symbol, it.id, it.name, it.multiplier,
		       tt.id, tt.name, ts.id, ts.name
		FROM trades t
		JOIN instruments i ON i.id = t.instrument_id
		JOIN instrument_types it ON it.id = i.instrument_type_id
		JOIN trade_types tt ON tt.id = t.trade_type_id
		JOIN trade_statuses ts ON ts.id = t.trade_status_id
		WHERE t.trade_status_id = $1
		ORDER BY t.id`

	rows, err := r.pool.Query(ctx, query, statusID)
	if err != nil {
		return nil, fmt.Errorf("query trades by status: %w", err)
	}
	defer rows.Close()

	var out []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var in domain.Instrument
		var itype reference.InstrumentType
		var ttype reference.TradeType
		var status reference.TradeStatus
		if err := rows.Scan(&t.ID, &t.Name, &t.Date, &t.Quantity,
			&in.ID, &in.Name, &in.Symbol, &itype.ID, &itype.Name, &itype.Multiplier,
			&ttype.ID, &ttype.Name, &status.ID, &status.Name); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		in.Type = &itype
		t.Instrument = &in
		t.Type = &ttype
		t.Status = &status
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) error {
	return r.createTradeWith(ctx, r.pool, trade)
}

func (r *Repository) createTradeWith(ctx context.Context, runner queryRower, trade *domain.Trade) error {
	if trade == nil {
		return errors.New("trade is nil")
	}
	const query = `
		INSERT INTO trades (name, date, instrument_id, quantity, trade_type_id, trade_status_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	row := runner.QueryRow(ctx, query,
		trade.Name, trade.Date, trade.Instrument.ID, trade.Quantity, trade.Type.ID, trade.Status.ID)
	if err := row.Scan(&trade.ID); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *Repository) UpdateTrade(ctx context.Context, trade *domain.Trade) error {
	return r.updateTradeWith(ctx, r.pool, trade)
}

func (r *Repository) updateTradeWith(ctx context.Context, runner queryRower, trade *domain.Trade) error {
	if trade == nil {
		return errors.New("trade is nil")
	}
	if trade.ID == 0 {
		return errors.New("trade id is required")
	}
	const query = `
		UPDATE trades
		SET quantity = $2, trade_status_id = $3
		WHERE id = $1
		RETURNING id`

	var id int64
	if err := runner.QueryRow(ctx, query, trade.ID, trade.Quantity, trade.Status.ID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("trade %d: %w", trade.ID, interfaces.ErrNotFound)
		}
		return translateError(err)
	}
	return nil
}

// Orders

func (r *Repository) OrdersByTrade(ctx context.Context, tradeID int64) ([]domain.Order, error) {
	const query = `
		SELECT o.id, o.broker_order_id, o.date, o.quantity, o.price, o.commission, o.trade_id,
		       i.id, i.name, i.symbol, it.id, it.name, it.multiplier,
		       ot.id, ot.name, ot.action
		FROM orders o
		JOIN instruments i ON i.id = o.instrument_id
		JOIN instrument_types it ON it.id = i.instrument_type_id
		JOIN order_types ot ON ot.id = o.order_type_id
		WHERE o.trade_id = $1
		ORDER BY o.id`

	rows, err := r.pool.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("query orders by trade: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var in domain.Instrument
		var itype reference.InstrumentType
		var otype reference.OrderType
		var action string
		var tradeRef *int64
		if err := rows.Scan(&o.ID, &o.BrokerOrderID, &o.Date, &o.Quantity, &o.Price, &o.Commission, &tradeRef,
			&in.ID, &in.Name, &in.Symbol, &itype.ID, &itype.Name, &itype.Multiplier,
			&otype.ID, &otype.Name, &action); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if tradeRef != nil {
			o.TradeID = *tradeRef
		}
		otype.Action = reference.Action(action)
		in.Type = &itype
		o.Instrument = &in
		o.Type = &otype
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return r.createOrderWith(ctx, r.pool, order)
}

func (r *Repository) createOrderWith(ctx context.Context, runner queryRower, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	const query = `
		INSERT INTO orders (broker_order_id, date, instrument_id, quantity, price, commission, order_type_id, trade_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	row := runner.QueryRow(ctx, query,
		order.BrokerOrderID, order.Date, order.Instrument.ID, order.Quantity,
		order.Price, order.Commission, order.Type.ID, tradeRef(order))
	if err := row.Scan(&order.ID); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *Repository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	return r.updateOrderWith(ctx, r.pool, order)
}

func (r *Repository) updateOrderWith(ctx context.Context, runner queryRower, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	if order.ID == 0 {
		return errors.New("order id is required")
	}
	const query = `
		UPDATE orders
		SET quantity = $2, price = $3, commission = $4, trade_id = $5
		WHERE id = $1
		RETURNING id`

	var id int64
	row := runner.QueryRow(ctx, query, order.ID, order.Quantity, order.Price, order.Commission, tradeRef(order))
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("order %d: %w", order.ID, interfaces.ErrNotFound)
		}
		return translateError(err)
	}
	return nil
}

// tradeRef maps the zero trade id to NULL so an unassigned order never
// points at a nonexistent trade.
func tradeRef(order *domain.Order) *int64 {
	if order.TradeID == 0 {
		return nil
	}
	id := order.TradeID
	return &id
}

// SaveTradeGroup persists the trade, assigns its id to every order, then
// inserts or updates the orders, all inside one transaction.
func (r *Repository) SaveTradeGroup(ctx context.Context, trade *domain.Trade, orders []*domain.Order) error {
	if trade == nil {
		return errors.New("trade is nil")
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if trade.Persisted() {
			if err := r.updateTradeWith(ctx, tx, trade); err != nil {
				return fmt.Errorf("update trade %q: %w", trade.Name, err)
			}
		} else {
			if err := r.createTradeWith(ctx, tx, trade); err != nil {
				return fmt.Errorf("create trade %q: %w", trade.Name, err)
			}
		}
		for _, o := range orders {
			o.TradeID = trade.ID
			if o.Persisted() {
				if err := r.updateOrderWith(ctx, tx, o); err != nil {
					return fmt.Errorf("update order %d: %w", o.BrokerOrderID, err)
				}
				continue
			}
			if err := r.createOrderWith(ctx, tx, o); err != nil {
				return fmt.Errorf("create order %d: %w", o.BrokerOrderID, err)
			}
		}
		return nil
	})
}
