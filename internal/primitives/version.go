// Package primitives provides versioning utilities for KindTable.
package primitives

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ComputeVersion computes a deterministic version for a kind table:
// SHA256 of the id-sorted specs as JSON, first 8 bytes in hex. Traces record it
// so a persisted trace can be matched with the table that named its kinds.
func ComputeVersion(table *KindTable) string {
	if table == nil || len(table.Kinds) == 0 {
		return ""
	}
	data, err := json.Marshal(table.Sorted())
	if err != nil {
		// KindSpec is plain data; Marshal does not fail on it.
		return "invalid"
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}
