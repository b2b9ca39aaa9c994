package keygen

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// KeyPrefix marks every license key issued by this service.
const KeyPrefix = "PACK"

// 8 random bytes render as four groups of four uppercase hex characters.
const keyEntropyBytes = 8

var keyPattern = regexp.MustCompile(`^PACK(-[0-9A-F]{4}){4}$`)

// Generate mints a fresh license key in the form PACK-XXXX-XXXX-XXXX-XXXX.
func Generate() (string, error) {
	buf := make([]byte, keyEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate license key: %w", err)
	}
	raw := strings.ToUpper(hex.EncodeToString(buf))
	return fmt.Sprintf("%s-%s-%s-%s-%s", KeyPrefix, raw[0:4], raw[4:8], raw[8:12], raw[12:16]), nil
}

// Normalize prepares user input for lookup: surrounding whitespace is
// trimmed and the key is upper-cased. Lookups are case-insensitive.
func Normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// WellFormed reports whether a normalized key matches the issued format.
func WellFormed(key string) bool {
	return keyPattern.MatchString(key)
}

// HashDevice derives the stored one-way hash for a raw device identifier.
// Raw identifiers never leave this function.
func HashDevice(deviceID string) string {
	sum := sha256.Sum256([]byte(deviceID))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the truncated hash prefix safe for introspection output.
func ShortHash(deviceHash string) string {
	if len(deviceHash) <= 8 {
		return deviceHash
	}
	return deviceHash[:8]
}
