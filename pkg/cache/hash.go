package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// digest hashes the JSON encoding of parts, so numeric and boolean key
// inputs never collide with their string spellings.
func digest(parts ...any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(parts)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Generator parameters and styles are
// folded into keys through it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
