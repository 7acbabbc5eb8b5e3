package shared

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewID returns "<prefix>_<8 hex>" backed by a random UUID.
func NewID(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:4])
}

// EnsureID keeps a non-blank id and mints one otherwise.
func EnsureID(id, prefix string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return NewID(prefix)
}
