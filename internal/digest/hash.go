package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for a future algorithm change.
const (
	DomainSnapshot = "xplain/snapshot/v1"
	DomainGraph    = "xplain/graph/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the domain-separated hash of v's canonical JSON.
func Hash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// SnapshotID identifies an IR snapshot by model, optimization level and text.
// Storing the same dump twice yields the same ID.
func SnapshotID(model string, level int, content string) string {
	id, err := Hash(DomainSnapshot, map[string]any{
		"model":   model,
		"level":   level,
		"content": content,
	})
	if err != nil {
		// Only strings and ints are hashed; canonical marshaling cannot fail.
		panic(err)
	}
	return id
}
