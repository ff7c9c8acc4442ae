package shared

import (
	"github.com/google/uuid"
)

// DefaultScanPageSize bounds how many rows a single scan page may return.
const DefaultScanPageSize = 500

// Cursor drives keyset pagination over append-only or id-ordered tables.
// A zero After starts from the beginning.
type Cursor struct {
	After uuid.UUID
	Limit int
}

// FirstPage returns a cursor positioned at the beginning with the given page size.
func FirstPage(limit int) Cursor {
	if limit <= 0 {
		limit = DefaultScanPageSize
	}
	return Cursor{Limit: limit}
}

// Next returns the cursor for the page after lastID.
func (c Cursor) Next(lastID uuid.UUID) Cursor {
	return Cursor{After: lastID, Limit: c.Limit}
}

// IsFirst reports whether the cursor starts from the beginning.
func (c Cursor) IsFirst() bool {
	return c.After == uuid.Nil
}
