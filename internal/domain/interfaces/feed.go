package interfaces

import "context"

// FeedSource resolves the location of the day's trade-confirm file.
// Resolve returns ErrNoConfirmFile when no feed exists for the date.
type FeedSource interface {
	Resolve(ctx context.Context) (string, error)
}
