package core

import (
	"github.com/google/uuid"
)

// NewEntryID creates a time-ordered identifier, using UUID v7 when available
// and falling back to v4.
func NewEntryID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id
}
