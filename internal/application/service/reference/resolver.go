package reference

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/raptorfin/rtms/internal/domain/entity/reference"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

// Feed codes the resolver understands.
const (
	CategoryStock  = "STK"
	CategoryOption = "OPT"
	RightCall      = "C"
	RightPut       = "P"
	SideBuy        = "BUY"
	SideSell       = "SELL"
	codeOpen       = "O"
	codeClose      = "C"
)

// UnmappedClassificationError reports a feed code with no configured
// target. It is never defaulted over.
type UnmappedClassificationError struct {
	Kind   string
	Inputs string
}

func (e *UnmappedClassificationError) Error() string {
	return fmt.Sprintf("no %s mapping for %s", e.Kind, e.Inputs)
}

// Resolver maps raw feed codes to classification records. Loaded once per
// run; read-only afterwards.
type Resolver struct {
	instrumentTypes      map[string]*domain.InstrumentType
	orderTypes           map[string]*domain.OrderType
	tradeTypes           map[string]*domain.TradeType
	statuses             map[string]*domain.TradeStatus
	tradeTypeByOrderType map[int64]*domain.TradeType
}

// Load fetches the five classification tables and indexes them by name.
func Load(ctx context.Context, repo interfaces.ReferenceRepository) (*Resolver, error) {
	r := &Resolver{
		instrumentTypes:      make(map[string]*domain.InstrumentType),
		orderTypes:           make(map[string]*domain.OrderType),
		tradeTypes:           make(map[string]*domain.TradeType),
		statuses:             make(map[string]*domain.TradeStatus),
		tradeTypeByOrderType: make(map[int64]*domain.TradeType),
	}

	itypes, err := repo.InstrumentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instrument types: %w", err)
	}
	for i := range itypes {
		r.instrumentTypes[itypes[i].Name] = &itypes[i]
	}

	otypes, err := repo.OrderTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order types: %w", err)
	}
	for i := range otypes {
		r.orderTypes[otypes[i].Name] = &otypes[i]
	}

	ttypes, err := repo.TradeTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trade types: %w", err)
	}
	tradeTypesByID := make(map[int64]*domain.TradeType, len(ttypes))
	for i := range ttypes {
		r.tradeTypes[ttypes[i].Name] = &ttypes[i]
		tradeTypesByID[ttypes[i].ID] = &ttypes[i]
	}

	statuses, err := repo.TradeStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trade statuses: %w", err)
	}
	for i := range statuses {
		r.statuses[statuses[i].Name] = &statuses[i]
	}

	mappings, err := repo.OrderTradeTypeMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order/trade type mappings: %w", err)
	}
	for _, m := range mappings {
		t, ok := tradeTypesByID[m.TradeTypeID]
		if !ok {
			return nil, fmt.Errorf("order type mapping %d references unknown trade type %d", m.ID, m.TradeTypeID)
		}
		r.tradeTypeByOrderType[m.OrderTypeID] = t
	}

	return r, nil
}

// InstrumentType resolves the feed's asset category and option right:
// STK -> Stock, OPT+C -> Call, OPT+P -> Put.
func (r *Resolver) InstrumentType(category, putCall string) (*domain.InstrumentType, error) {
	var name string
	switch {
	case category == CategoryStock:
		name = domain.InstrumentTypeStock
	case category == CategoryOption && putCall == RightCall:
		name = domain.InstrumentTypeCall
	case category == CategoryOption && putCall == RightPut:
		name = domain.InstrumentTypePut
	default:
		return nil, &UnmappedClassificationError{
			Kind:   "instrument type",
			Inputs: fmt.Sprintf("category=%q putCall=%q", category, putCall),
		}
	}
	t, ok := r.instrumentTypes[name]
	if !ok {
		return nil, &UnmappedClassificationError{Kind: "instrument type", Inputs: fmt.Sprintf("name=%q", name)}
	}
	return t, nil
}

// OrderType resolves the feed's open/close code and buy/sell action into
// one of the four order classifications.
func (r *Resolver) OrderType(code, buySell string) (*domain.OrderType, error) {
	var name string
	switch {
	case buySell == SideBuy && strings.Contains(code, codeOpen):
		name = domain.OrderTypeBuyToOpen
	case buySell == SideBuy && strings.Contains(code, codeClose):
		name = domain.OrderTypeBuyToClose
	case buySell == SideSell && strings.Contains(code, codeOpen):
		name = domain.OrderTypeSellToOpen
	case buySell == SideSell && strings.Contains(code, codeClose):
		name = domain.OrderTypeSellToClose
	default:
		return nil, &UnmappedClassificationError{
			Kind:   "order type",
			Inputs: fmt.Sprintf("code=%q buySell=%q", code, buySell),
		}
	}
	t, ok := r.orderTypes[name]
	if !ok {
		return nil, &UnmappedClassificationError{Kind: "order type", Inputs: fmt.Sprintf("name=%q", name)}
	}
	return t, nil
}

// TradeType looks up the trade type configured for the order type.
func (r *Resolver) TradeType(orderType *domain.OrderType) (*domain.TradeType, error) {
	t, ok := r.tradeTypeByOrderType[orderType.ID]
	if !ok {
		return nil, &UnmappedClassificationError{
			Kind:   "trade type",
			Inputs: fmt.Sprintf("orderType=%q", orderType.Name),
		}
	}
	return t, nil
}

// Status looks up a trade status by name.
func (r *Resolver) Status(name string) (*domain.TradeStatus, error) {
	s, ok := r.statuses[name]
	if !ok {
		return nil, &UnmappedClassificationError{Kind: "trade status", Inputs: fmt.Sprintf("name=%q", name)}
	}
	return s, nil
}
