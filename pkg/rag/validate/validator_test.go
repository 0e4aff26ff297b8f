package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulation-chat-be/pkg/chunker"
	"regulation-chat-be/pkg/rag/search"
)

func citation(page chunker.PageRef, actualPages int) *search.Citation {
	return &search.Citation{
		DocumentName: "aged-care-act-1997.pdf",
		Content:      "some clause",
		Page:         page,
		ActualPages:  actualPages,
		Similarity:   0.9,
	}
}

func TestUnknownPageKept(t *testing.T) {
	result := Citations([]*search.Citation{citation(chunker.PageUnknown(), 100)})

	require.Len(t, result.Citations, 1)
	assert.False(t, result.Citations[0].Page.IsKnown())
	assert.Zero(t, result.Rejected)
}

func TestMissingPageCountDowngradesToUnknown(t *testing.T) {
	result := Citations([]*search.Citation{citation(chunker.PageKnown(12), 0)})

	require.Len(t, result.Citations, 1)
	assert.False(t, result.Citations[0].Page.IsKnown())
	assert.Zero(t, result.Rejected)
}

func TestPhantomPageDropped(t *testing.T) {
	result := Citations([]*search.Citation{
		citation(chunker.PageKnown(101), 100),
		citation(chunker.PageKnown(999), 100),
	})

	assert.Empty(t, result.Citations)
	assert.Equal(t, 2, result.Rejected)
}

func TestSuspiciousTailDowngraded(t *testing.T) {
	// 91st percentile of a 100-page document.
	result := Citations([]*search.Citation{citation(chunker.PageKnown(91), 100)})

	require.Len(t, result.Citations, 1)
	assert.False(t, result.Citations[0].Page.IsKnown())
	assert.Zero(t, result.Rejected)
}

func TestLastPageExactlyKept(t *testing.T) {
	// The 100th percentile is exact, not suspicious.
	result := Citations([]*search.Citation{citation(chunker.PageKnown(100), 100)})

	require.Len(t, result.Citations, 1)
	page, known := result.Citations[0].Page.Number()
	require.True(t, known)
	assert.Equal(t, 100, page)
}

func TestMidDocumentPageKeptUnchanged(t *testing.T) {
	result := Citations([]*search.Citation{citation(chunker.PageKnown(42), 100)})

	require.Len(t, result.Citations, 1)
	page, known := result.Citations[0].Page.Number()
	require.True(t, known)
	assert.Equal(t, 42, page)
}

func TestValidatorDoesNotMutateInput(t *testing.T) {
	input := citation(chunker.PageKnown(95), 100)
	Citations([]*search.Citation{input})

	page, known := input.Page.Number()
	require.True(t, known)
	assert.Equal(t, 95, page)
}

func TestNeverEmitsPageBeyondActual(t *testing.T) {
	var inputs []*search.Citation
	for page := -5; page <= 120; page++ {
		inputs = append(inputs, citation(chunker.PageFromSentinel(page), 100))
	}

	result := Citations(inputs)
	for _, c := range result.Citations {
		if page, known := c.Page.Number(); known {
			assert.LessOrEqual(t, page, 100)
			assert.GreaterOrEqual(t, page, 1)
		}
	}
}
