package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
)

// GenerateSessionSecret returns a random URL-safe signing secret. It is used
// when JWT_SECRET_KEY is unset, so sessions do not survive a restart.
func GenerateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	log.Println("WARNING: JWT_SECRET_KEY not set; using a random secret for this process")
	return base64.URLEncoding.EncodeToString(b), nil
}
