// Package validate enforces the page-claim invariant at the boundary between
// retrieval and presentation. Whatever state the index is in, no citation
// with a page beyond its document's real length gets past this point.
package validate

import (
	"regulation-chat-be/pkg/chunker"
	"regulation-chat-be/pkg/rag/search"
)

// SuspiciousTailFraction marks the last decile of a document. Page estimates
// that close to the end are the most likely to be off by a chapter, so they
// are downgraded to unknown rather than shown. Tunable, not load-bearing.
const SuspiciousTailFraction = 0.9

// Result carries the surviving citations and a count of the ones dropped as
// phantom. The count exists for logging; dropped citations are never shown
// or flagged to users.
type Result struct {
	Citations []*search.Citation
	Rejected  int
}

// Citations applies the page-trust policy to each citation:
//
//   - unknown page: keep as-is, rendered without a page reference
//   - no authoritative page count: keep, downgrade page to unknown
//   - page out of [1, actualPages]: drop entirely
//   - page in the suspicious tail: keep, downgrade page to unknown
//   - otherwise: keep unchanged
//
// Pure function; the caller logs Result.Rejected.
func Citations(citations []*search.Citation) Result {
	kept := make([]*search.Citation, 0, len(citations))
	rejected := 0

	for _, c := range citations {
		page, known := c.Page.Number()
		if !known {
			kept = append(kept, c)
			continue
		}

		if c.ActualPages <= 0 {
			downgraded := *c
			downgraded.Page = chunker.PageUnknown()
			kept = append(kept, &downgraded)
			continue
		}

		if page < 1 || page > c.ActualPages {
			rejected++
			continue
		}

		if float64(page) > SuspiciousTailFraction*float64(c.ActualPages) && page != c.ActualPages {
			downgraded := *c
			downgraded.Page = chunker.PageUnknown()
			kept = append(kept, &downgraded)
			continue
		}

		kept = append(kept, c)
	}

	return Result{Citations: kept, Rejected: rejected}
}
