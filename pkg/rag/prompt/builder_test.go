package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulation-chat-be/pkg/llm"
	"regulation-chat-be/pkg/rag/search"
)

func testCitation(content string, similarity float64) *search.Citation {
	return &search.Citation{
		DocumentTitle: "Aged Care Act 1997",
		SectionTitle:  "Section 54-1A",
		Content:       content,
		Similarity:    similarity,
	}
}

func TestBuildStructure(t *testing.T) {
	messages := Build("What are provider responsibilities?",
		[]*search.Citation{testCitation("Providers must do things.", 0.9)},
		nil)

	require.GreaterOrEqual(t, len(messages), 3)
	assert.Equal(t, llm.RoleUser, messages[0].Role)
	assert.Equal(t, llm.RoleModel, messages[1].Role)
	assert.Equal(t, llm.RoleUser, messages[len(messages)-1].Role)
	assert.Equal(t, "What are provider responsibilities?", messages[len(messages)-1].Content)
}

func TestBuildIncludesRelevanceBands(t *testing.T) {
	messages := Build("question", []*search.Citation{
		testCitation("very relevant clause", 0.92),
		testCitation("somewhat relevant clause", 0.65),
		testCitation("barely relevant clause", 0.45),
	}, nil)

	context := messages[0].Content
	assert.Contains(t, context, "HIGH relevance")
	assert.Contains(t, context, "MEDIUM relevance")
	assert.Contains(t, context, "LOW relevance")
}

func TestBuildForbidsPageCitations(t *testing.T) {
	messages := Build("question", []*search.Citation{testCitation("clause", 0.9)}, nil)

	assert.Contains(t, messages[0].Content, "NEVER cite page numbers")
}

func TestBuildBoundsHistoryWindow(t *testing.T) {
	history := make([]llm.Message, 12)
	for i := range history {
		history[i] = llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("turn %d", i)}
	}

	messages := Build("question", nil, history)

	// instruction + ack + window + question
	assert.Len(t, messages, 2+HistoryWindow+1)
	assert.Equal(t, "turn 7", messages[2].Content)
}

func TestBuildTruncatesOversizedContext(t *testing.T) {
	big := strings.Repeat("regulatory text ", 200)
	var citations []*search.Citation
	for i := 0; i < 20; i++ {
		citations = append(citations, testCitation(big, 0.9))
	}

	messages := Build("question", citations, nil)
	assert.Less(t, len(messages[0].Content), maxContextChars+len(big))
}

func TestBuildEmptyContextStillRenders(t *testing.T) {
	messages := Build("question", nil, nil)
	assert.Contains(t, messages[0].Content, "(none)")
}
