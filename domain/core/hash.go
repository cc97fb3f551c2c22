package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters for display
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeTableHash fingerprints a table independent of column order. Rows are
// hashed in order, so the same data in a different row order hashes differently.
func ComputeTableHash(headers []string, rows []map[string]string) Hash {
	cols := append([]string(nil), headers...)
	sort.Strings(cols)

	var data strings.Builder
	data.WriteString(strings.Join(cols, "\x1f"))
	for _, row := range rows {
		data.WriteByte('\x1e')
		for i, col := range cols {
			if i > 0 {
				data.WriteByte('\x1f')
			}
			data.WriteString(row[col])
		}
	}
	return NewHash([]byte(data.String()))
}
