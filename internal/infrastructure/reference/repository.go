package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/raptorfin/rtms/internal/domain/entity/reference"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

// Repository reads the classification tables from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

var _ interfaces.ReferenceRepository = (*Repository)(nil)

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

func (r *Repository) InstrumentTypes(ctx context.Context) ([]domain.InstrumentType, error) {
	const query = `SELECT id, name, multiplier FROM instrument_types ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query instrument types: %w", err)
	}
	defer rows.Close()

	var out []domain.InstrumentType
	for rows.Next() {
		var t domain.InstrumentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Multiplier); err != nil {
			return nil, fmt.Errorf("scan instrument type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) OrderTypes(ctx context.Context) ([]domain.OrderType, error) {
	const query = `SELECT id, name, action FROM order_types ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query order types: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderType
	for rows.Next() {
		var t domain.OrderType
		var action string
		if err := rows.Scan(&t.ID, &t.Name, &action); err != nil {
			return nil, fmt.Errorf("scan order type: %w", err)
		}
		t.Action = domain.Action(action)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) TradeTypes(ctx context.Context) ([]domain.TradeType, error) {
	const query = `SELECT id, name FROM trade_types ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trade types: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeType
	for rows.Next() {
		var t domain.TradeType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan trade type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) TradeStatuses(ctx context.Context) ([]domain.TradeStatus, error) {
	const query = `SELECT id, name FROM trade_statuses ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trade statuses: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeStatus
	for rows.Next() {
		var s domain.TradeStatus
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan trade status: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) OrderTradeTypeMappings(ctx context.Context) ([]domain.OrderTradeTypeMapping, error) {
	const query = `SELECT id, order_type_id, trade_type_id FROM order_trade_type_mappings ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query order/trade type mappings: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderTradeTypeMapping
	for rows.Next() {
		var m domain.OrderTradeTypeMapping
		if err := rows.Scan(&m.ID, &m.OrderTypeID, &m.TradeTypeID); err != nil {
			return nil, fmt.Errorf("scan order/trade type mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
