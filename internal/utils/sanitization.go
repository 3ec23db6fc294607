package utils

import (
	"net/http"
	"strings"
)

// sensitiveHeaders are never logged with their real values
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"apikey":        true,
	"x-api-key":     true,
	"cookie":        true,
	"set-cookie":    true,
}

// SanitizeHeaders returns a copy of the headers safe for logging, with
// credential-bearing values masked
func SanitizeHeaders(headers http.Header) map[string][]string {
	sanitized := make(map[string][]string, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			sanitized[key] = []string{"***MASKED***"}
			continue
		}
		sanitized[key] = values
	}
	return sanitized
}

// MaskSecret masks a secret for logging, keeping a short prefix so distinct
// keys remain distinguishable in logs
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return "***MASKED***"
	}
	return secret[:4] + "***MASKED***"
}
