package idnumber

import (
	"crypto/sha256"
	"encoding/hex"
)

// Mask returns a redacted ID number safe for logging. Only the last 4
// characters are kept so log lines can be correlated without exposing PII.
func Mask(raw string) string {
	if len(raw) <= 4 {
		return "****"
	}
	return "****" + raw[len(raw)-4:]
}

// Hash returns the hex SHA-256 of the ID type and number, used as a stable
// key in events and traces.
func Hash(idType IDType, raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(string(idType) + ":" + raw))
	return hex.EncodeToString(sum[:])
}
