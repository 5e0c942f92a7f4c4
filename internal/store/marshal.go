package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/xplain/internal/digest"
)

// marshalCounts converts a count table to canonical JSON TEXT.
func marshalCounts(counts map[string]int) (string, error) {
	if counts == nil {
		counts = map[string]int{}
	}
	data, err := digest.MarshalCanonical(counts)
	if err != nil {
		return "", fmt.Errorf("marshal counts: %w", err)
	}
	return string(data), nil
}

// marshalOptionalCounts maps nil to SQL NULL.
func marshalOptionalCounts(counts map[string]int) (sql.NullString, error) {
	if counts == nil {
		return sql.NullString{}, nil
	}
	s, err := marshalCounts(counts)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: s, Valid: true}, nil
}

func unmarshalCounts(data string) (map[string]int, error) {
	counts := map[string]int{}
	if data == "" {
		return counts, nil
	}
	if err := json.Unmarshal([]byte(data), &counts); err != nil {
		return nil, fmt.Errorf("unmarshal counts: %w", err)
	}
	return counts, nil
}
