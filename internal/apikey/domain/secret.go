package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyPrefix marks invoicedesk secrets so leaked keys are easy to scan for.
const KeyPrefix = "idk_live_"

const secretBytes = 32

// HashAPIKey is the lookup hash stored instead of the secret.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// HasKeyPrefix rejects obviously foreign tokens before a database lookup.
func HasKeyPrefix(raw string) bool {
	return strings.HasPrefix(raw, KeyPrefix) && len(raw) > len(KeyPrefix)
}

// NewSecret returns "idk_live_<key id>_<64 hex>" and its hash. The key id
// part lets operators match a leaked secret to its record.
func NewSecret(keyID string) (plain, hash string, err error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}
	id := strings.ToLower(strings.TrimPrefix(keyID, "key_"))
	plain = KeyPrefix + id + "_" + hex.EncodeToString(secret)
	return plain, HashAPIKey(plain), nil
}
