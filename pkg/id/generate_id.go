package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns a random (v4) UUID as exactly 32 lowercase hex characters, no hyphens.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
