package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Attribute names of the flat field dictionaries the confirm parser emits.
const (
	FieldDescription   = "description"
	FieldSymbol        = "symbol"
	FieldOrderID       = "orderID"
	FieldAssetCategory = "assetCategory"
	FieldPutCall       = "putCall"
	FieldQuantity      = "quantity"
	FieldPrice         = "price"
	FieldCommission    = "commission"
	FieldCode          = "code"
	FieldBuySell       = "buySell"
	FieldDateTime      = "dateTime"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// Confirm is one decoded fill line of the daily trade-confirm feed.
type Confirm struct {
	Description   string
	Symbol        string
	BrokerOrderID int64
	AssetCategory string
	PutCall       string
	Quantity      int64
	Price         decimal.Decimal
	Commission    decimal.Decimal
	Code          string
	BuySell       string
	DateTime      time.Time
}

// MalformedLineError reports a feed line that cannot be decoded. It is
// fatal to the line, not to the run.
type MalformedLineError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed feed line: field %s=%q: %s", e.Field, e.Value, e.Reason)
}

// ParseConfirm decodes one flat field dictionary into a Confirm,
// validating every required field before any of it is used.
func ParseConfirm(fields map[string]string) (Confirm, error) {
	var c Confirm
	var err error

	if c.Description, err = required(fields, FieldDescription); err != nil {
		return Confirm{}, err
	}
	if c.Symbol, err = required(fields, FieldSymbol); err != nil {
		return Confirm{}, err
	}
	if c.BrokerOrderID, err = parseInt(fields, FieldOrderID); err != nil {
		return Confirm{}, err
	}
	if c.AssetCategory, err = required(fields, FieldAssetCategory); err != nil {
		return Confirm{}, err
	}
	c.PutCall = fields[FieldPutCall]
	if c.Quantity, err = parseInt(fields, FieldQuantity); err != nil {
		return Confirm{}, err
	}
	if c.Quantity == 0 {
		return Confirm{}, &MalformedLineError{Field: FieldQuantity, Value: fields[FieldQuantity], Reason: "quantity must be non-zero"}
	}
	if c.Price, err = parseDecimal(fields, FieldPrice); err != nil {
		return Confirm{}, err
	}
	if c.Commission, err = parseDecimal(fields, FieldCommission); err != nil {
		return Confirm{}, err
	}
	if c.Code, err = required(fields, FieldCode); err != nil {
		return Confirm{}, err
	}
	if c.BuySell, err = required(fields, FieldBuySell); err != nil {
		return Confirm{}, err
	}
	if c.DateTime, err = parseDateTime(fields); err != nil {
		return Confirm{}, err
	}
	return c, nil
}

func required(fields map[string]string, name string) (string, error) {
	v := strings.TrimSpace(fields[name])
	if v == "" {
		return "", &MalformedLineError{Field: name, Reason: "missing required field"}
	}
	return v, nil
}

func parseInt(fields map[string]string, name string) (int64, error) {
	raw, err := required(fields, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &MalformedLineError{Field: name, Value: raw, Reason: "not an integer"}
	}
	return n, nil
}

func parseDecimal(fields map[string]string, name string) (decimal.Decimal, error) {
	raw, err := required(fields, name)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &MalformedLineError{Field: name, Value: raw, Reason: "not a decimal"}
	}
	return d, nil
}

// parseDateTime accepts "YYYY-MM-DD HH:MM:SS" as well as the broker's
// comma variant "YYYY-MM-DD, HH:MM:SS".
func parseDateTime(fields map[string]string) (time.Time, error) {
	raw, err := required(fields, FieldDateTime)
	if err != nil {
		return time.Time{}, err
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	ts, parseErr := time.Parse(dateTimeLayout, cleaned)
	if parseErr != nil {
		return time.Time{}, &MalformedLineError{Field: FieldDateTime, Value: raw, Reason: "not a date-time"}
	}
	return ts, nil
}
