// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import "github.com/google/uuid"

// ID identifies a Loop. IDs are random 128-bit values.
type ID uuid.UUID

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the canonical textual form produced by ID.String.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

// String returns the canonical textual form of the ID.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id == ID{}
}
