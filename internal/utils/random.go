package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID (16 hex characters)
func GenerateRequestID() string {
	return generateHex(8)
}

// GenerateCorrelationID generates a UUID for correlation tracking
func GenerateCorrelationID() string {
	return uuid.New().String()
}

// GenerateAuditID generates a UUID for audit record identification
func GenerateAuditID() string {
	return uuid.New().String()
}

// generateHex generates a random hex string of the specified byte length
func generateHex(byteLength int) string {
	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// fall back to the uuid package which handles that itself
		return uuid.New().String()[:byteLength*2]
	}
	return hex.EncodeToString(bytes)
}
