package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Storage models. These carry the schema: `rtms migrate` feeds them to
// AutoMigrate, and the pgx repositories query the tables they define.

type TradeStatus struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
}

func (TradeStatus) TableName() string { return "trade_statuses" }

type TradeType struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
}

func (TradeType) TableName() string { return "trade_types" }

type InstrumentType struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Multiplier int    `gorm:"column:multiplier;not null"`
}

func (InstrumentType) TableName() string { return "instrument_types" }

type OrderType struct {
	ID     int64  `gorm:"primaryKey"`
	Name   string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Action string `gorm:"column:action;type:varchar(10);not null"`
}

func (OrderType) TableName() string { return "order_types" }

type OrderTradeTypeMapping struct {
	ID          int64 `gorm:"primaryKey"`
	OrderTypeID int64 `gorm:"column:order_type_id;uniqueIndex;not null"`
	TradeTypeID int64 `gorm:"column:trade_type_id;index;not null"`
}

func (OrderTradeTypeMapping) TableName() string { return "order_trade_type_mappings" }

type Instrument struct {
	ID               int64  `gorm:"primaryKey"`
	Name             string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Symbol           string `gorm:"column:symbol;type:varchar(100);uniqueIndex;not null"`
	InstrumentTypeID int64  `gorm:"column:instrument_type_id;index;not null"`
}

func (Instrument) TableName() string { return "instruments" }

type Trade struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;type:varchar(100);uniqueIndex:uidx_trade_name_date;not null"`
	Date          time.Time `gorm:"column:date;type:date;uniqueIndex:uidx_trade_name_date;not null"`
	InstrumentID  int64     `gorm:"column:instrument_id;index;not null"`
	Quantity      int64     `gorm:"column:quantity;not null"`
	TradeTypeID   int64     `gorm:"column:trade_type_id;not null"`
	TradeStatusID int64     `gorm:"column:trade_status_id;index;not null"`
}

func (Trade) TableName() string { return "trades" }

type Order struct {
	ID            int64           `gorm:"primaryKey"`
	BrokerOrderID int64           `gorm:"column:broker_order_id;uniqueIndex;not null"`
	Date          time.Time       `gorm:"column:date;not null"`
	InstrumentID  int64           `gorm:"column:instrument_id;index;not null"`
	Quantity      int64           `gorm:"column:quantity;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(10,6);not null"`
	Commission    decimal.Decimal `gorm:"column:commission;type:decimal(10,6);not null"`
	OrderTypeID   int64           `gorm:"column:order_type_id;not null"`
	TradeID       *int64          `gorm:"column:trade_id;index"`
}

func (Order) TableName() string { return "orders" }

// All lists every model in dependency order.
func All() []interface{} {
	return []interface{}{
		&TradeStatus{},
		&TradeType{},
		&InstrumentType{},
		&OrderType{},
		&OrderTradeTypeMapping{},
		&Instrument{},
		&Trade{},
		&Order{},
	}
}
