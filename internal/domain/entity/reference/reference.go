package reference

// Action is the side an order type acts on.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
)

// Well-known reference names. The rows themselves live in storage and are
// seeded by `rtms migrate`; resolution always goes through the loaded
// tables, never through these constants alone.
const (
	InstrumentTypeStock = "Stock"
	InstrumentTypeCall  = "Call"
	InstrumentTypePut   = "Put"

	OrderTypeBuyToOpen   = "BuyToOpen"
	OrderTypeBuyToClose  = "BuyToClose"
	OrderTypeSellToOpen  = "SellToOpen"
	OrderTypeSellToClose = "SellToClose"

	TradeTypeLong  = "Long"
	TradeTypeShort = "Short"

	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// InstrumentType classifies an instrument and carries its contract
// multiplier (1 for stock, 100 for option contracts).
type InstrumentType struct {
	ID         int64
	Name       string
	Multiplier int
}

// OrderType names one of the four open/close order classifications.
type OrderType struct {
	ID     int64
	Name   string
	Action Action
}

// TradeType classifies a trade as long or short exposure.
type TradeType struct {
	ID   int64
	Name string
}

// TradeStatus marks a trade open or closed.
type TradeStatus struct {
	ID   int64
	Name string
}

// OrderTradeTypeMapping assigns the trade type a new trade inherits from
// its opening order's type. Many-to-one: exactly one trade type per order
// type.
type OrderTradeTypeMapping struct {
	ID          int64
	OrderTypeID int64
	TradeTypeID int64
}
