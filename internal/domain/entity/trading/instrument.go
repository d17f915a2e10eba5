package trading

import (
	"fmt"

	"github.com/raptorfin/rtms/internal/domain/entity/reference"
)

// Instrument is a tradable security, created lazily the first time the
// feed names it and never mutated afterwards.
type Instrument struct {
	ID     int64
	Name   string
	Symbol string
	Type   *reference.InstrumentType
}

// Persisted reports whether storage has assigned the instrument an id.
func (i *Instrument) Persisted() bool { return i.ID != 0 }

func (i *Instrument) String() string {
	return fmt.Sprintf("<name=%s, sym=%s, type=%s>", i.Name, i.Symbol, i.Type.Name)
}
