// Package response caches finished answer envelopes keyed by normalized
// query text. Caching is an optimization only; correctness (validation,
// authorization) never depends on it.
package response

import (
	"context"
	"regexp"
	"strings"
	"time"

	"regulation-chat-be/pkg/rag/search"
)

const (
	// DefaultTTL is how long a cached answer stays valid.
	DefaultTTL = 30 * time.Minute

	// DefaultCapacity bounds the in-memory backend. The oldest entry is
	// evicted when full.
	DefaultCapacity = 100
)

// Cached is the answer envelope stored per normalized query.
type Cached struct {
	Answer    string
	Mode      string
	Citations []*search.Citation
}

// Cache is safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, query string) (*Cached, bool)
	Set(ctx context.Context, query string, value *Cached)
}

var keyPunctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeKey lowercases, strips punctuation and collapses whitespace so
// trivially different phrasings of the same query share an entry.
func NormalizeKey(query string) string {
	key := strings.ToLower(query)
	key = keyPunctRe.ReplaceAllString(key, "")
	return strings.Join(strings.Fields(key), " ")
}
