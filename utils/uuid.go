package utils

import (
	"github.com/google/uuid"
)

// GenerateSessionID returns a random identifier for a login session
func GenerateSessionID() string {
	return uuid.NewString()
}
