package models

import (
	"strings"

	"github.com/google/uuid"
)

// ensureID keeps caller supplied identifiers and fills in a random UUID otherwise.
func ensureID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.NewString()
}
