// Package models holds the documents the forum persists. Documents are
// denormalized: related records copy what they display (author names) and the
// copies are kept in sync by the code that changes the source.
package models

import "github.com/oklog/ulid/v2"

// NewID returns a new lexically sortable document identifier.
func NewID() string {
	return ulid.Make().String()
}
