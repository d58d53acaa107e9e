// Package storage persists generated ticket sheets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for names that would escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// Store defines where finished PDFs go.
type Store interface {
	// Save writes data under name and returns the stored location.
	Save(ctx context.Context, name string, data []byte) (string, error)
	// Open returns a reader for a location previously returned by Save.
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// NewFileName returns a collision-resistant file name for a sheet generated
// at now: price_tickets_20060102_150405_<8 hex>.pdf.
func NewFileName(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("price_tickets_%s_%s.pdf", now.Format("20060102_150405"), suffix)
}

// validName rejects empty names and anything containing a path separator or
// parent reference.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("operation cancelled: %w", ctx.Err())
	default:
		return nil
	}
}
