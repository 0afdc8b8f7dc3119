// Package export defines where exported CSV files are handed off.
package export

import (
	"context"
	"errors"
)

// Sink delivers a finished CSV document under a suggested filename.
type Sink interface {
	Deliver(ctx context.Context, filename, csv string) error
}

var ErrEmptyFilename = errors.New("empty export filename")
