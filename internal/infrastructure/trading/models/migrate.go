package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	reference "github.com/raptorfin/rtms/internal/domain/entity/reference"
)

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}
	return nil
}

// Seed inserts the fixed reference rows. It is idempotent: rows that
// already exist are left alone.
func Seed(db *gorm.DB) error {
	onConflict := clause.OnConflict{DoNothing: true}

	statuses := []TradeStatus{
		{Name: reference.StatusOpen},
		{Name: reference.StatusClosed},
	}
	if err := db.Clauses(onConflict).Create(&statuses).Error; err != nil {
		return fmt.Errorf("seed trade statuses: %w", err)
	}

	tradeTypes := []TradeType{
		{Name: reference.TradeTypeLong},
		{Name: reference.TradeTypeShort},
	}
	if err := db.Clauses(onConflict).Create(&tradeTypes).Error; err != nil {
		return fmt.Errorf("seed trade types: %w", err)
	}

	instrumentTypes := []InstrumentType{
		{Name: reference.InstrumentTypeStock, Multiplier: 1},
		{Name: reference.InstrumentTypeCall, Multiplier: 100},
		{Name: reference.InstrumentTypePut, Multiplier: 100},
	}
	if err := db.Clauses(onConflict).Create(&instrumentTypes).Error; err != nil {
		return fmt.Errorf("seed instrument types: %w", err)
	}

	orderTypes := []OrderType{
		{Name: reference.OrderTypeBuyToOpen, Action: string(reference.ActionBuy)},
		{Name: reference.OrderTypeBuyToClose, Action: string(reference.ActionBuy)},
		{Name: reference.OrderTypeSellToOpen, Action: string(reference.ActionSell)},
		{Name: reference.OrderTypeSellToClose, Action: string(reference.ActionSell)},
	}
	if err := db.Clauses(onConflict).Create(&orderTypes).Error; err != nil {
		return fmt.Errorf("seed order types: %w", err)
	}

	return seedMappings(db)
}

// seedMappings wires each order type to the trade type a new trade takes
// from it: opening orders define the exposure, closing orders point back
// at the exposure they unwind.
func seedMappings(db *gorm.DB) error {
	pairs := map[string]string{
		reference.OrderTypeBuyToOpen:   reference.TradeTypeLong,
		reference.OrderTypeSellToClose: reference.TradeTypeLong,
		reference.OrderTypeSellToOpen:  reference.TradeTypeShort,
		reference.OrderTypeBuyToClose:  reference.TradeTypeShort,
	}

	var orderTypes []OrderType
	if err := db.Find(&orderTypes).Error; err != nil {
		return fmt.Errorf("load order types: %w", err)
	}
	var tradeTypes []TradeType
	if err := db.Find(&tradeTypes).Error; err != nil {
		return fmt.Errorf("load trade types: %w", err)
	}

	tradeTypeIDs := make(map[string]int64, len(tradeTypes))
	for _, t := range tradeTypes {
		tradeTypeIDs[t.Name] = t.ID
	}

	var mappings []OrderTradeTypeMapping
	for _, ot := range orderTypes {
		target, ok := pairs[ot.Name]
		if !ok {
			continue
		}
		tradeTypeID, ok := tradeTypeIDs[target]
		if !ok {
			return fmt.Errorf("trade type %q missing for order type %q", target, ot.Name)
		}
		mappings = append(mappings, OrderTradeTypeMapping{OrderTypeID: ot.ID, TradeTypeID: tradeTypeID})
	}
	if len(mappings) == 0 {
		return nil
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&mappings).Error; err != nil {
		return fmt.Errorf("seed order/trade type mappings: %w", err)
	}
	return nil
}
