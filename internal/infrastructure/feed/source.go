package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
)

const (
	confirmBaseName = "DailyTradeConfirms"
	confirmExt      = "xml"
)

// LocalSource points at an explicitly provided confirm file. A missing
// file is an error here: the operator named it on purpose.
type LocalSource struct {
	Path string
}

var _ interfaces.FeedSource = LocalSource{}

func (s LocalSource) Resolve(_ context.Context) (string, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return "", fmt.Errorf("trade-confirm file %s: %w", s.Path, err)
	}
	return s.Path, nil
}

// DirSource locates the conventionally named confirm file inside a drop
// directory: <account>.DailyTradeConfirms.<date>.<date>.xml. A missing
// file means no trades confirmed for the date.
type DirSource struct {
	Dir     string
	Account string
	Date    string // YYYYMMDD
}

var _ interfaces.FeedSource = DirSource{}

func (s DirSource) Resolve(_ context.Context) (string, error) {
	name := strings.Join([]string{s.Account, confirmBaseName, s.Date, s.Date, confirmExt}, ".")
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, interfaces.ErrNoConfirmFile)
		}
		return "", fmt.Errorf("trade-confirm file %s: %w", path, err)
	}
	return path, nil
}
