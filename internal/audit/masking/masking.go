// Package masking redacts secrets and contact details before they are
// written to the audit trail.
package masking

import "strings"

const maskToken = "****"

var secretKeys = []string{"secret", "token", "api_key", "password"}

var emailKeys = []string{"email", "recipient"}

// MaskSecret keeps an underscore prefix such as "idk_live_" and the last
// four characters.
func MaskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	prefix, rest := "", value
	if i := strings.LastIndex(value, "_"); i >= 0 && i < len(value)-1 {
		prefix, rest = value[:i+1], value[i+1:]
	}
	if len(rest) <= 4 {
		return prefix + maskToken
	}
	return prefix + maskToken + rest[len(rest)-4:]
}

// MaskEmail keeps the first letter of the local part and the domain.
func MaskEmail(value string) string {
	value = strings.TrimSpace(value)
	at := strings.LastIndex(value, "@")
	if at <= 0 {
		return MaskSecret(value)
	}
	return value[:1] + maskToken + value[at:]
}

// Redact returns a copy of metadata with sensitive values masked. Keys are
// matched by substring, so "public_token" counts as a token. Empty keys are
// dropped.
func Redact(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for key, value := range metadata {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = redactValue(strings.ToLower(key), value)
	}
	return out
}

func redactValue(key string, value any) any {
	switch v := value.(type) {
	case map[string]any:
		return Redact(v)
	case string:
		switch {
		case containsAny(key, secretKeys):
			return MaskSecret(v)
		case containsAny(key, emailKeys):
			return MaskEmail(v)
		}
	}
	return value
}

func containsAny(key string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(key, n) {
			return true
		}
	}
	return false
}
