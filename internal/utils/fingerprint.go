package utils

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns the xxh3 hash of v's JSON encoding as 16 hex digits.
func Fingerprint(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return FingerprintBytes(b), nil
}

func FingerprintBytes(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}
