package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

const confirmElement = "TradeConfirm"

// Parse extracts every TradeConfirm element of the feed markup as one
// flat field dictionary (attribute name -> value), in document order.
func Parse(r io.Reader) ([]map[string]string, error) {
	dec := xml.NewDecoder(r)

	var records []map[string]string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse trade confirms: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != confirmElement {
			continue
		}
		fields := make(map[string]string, len(start.Attr))
		for _, attr := range start.Attr {
			fields[attr.Name.Local] = attr.Value
		}
		records = append(records, fields)
	}
	return records, nil
}

// ParseFile parses the confirm file at path.
func ParseFile(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade-confirm file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
