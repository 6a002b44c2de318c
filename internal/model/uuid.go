package model

import "github.com/google/uuid"

// NewUUID generates the sole correlation token used throughout
// dispatch and scenario file layout for a single candidate.
func NewUUID() string {
	return uuid.NewString()
}
