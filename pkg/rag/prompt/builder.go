// Package prompt assembles the bounded generation prompt from validated
// context and conversation history.
package prompt

import (
	"fmt"
	"strings"

	"regulation-chat-be/pkg/llm"
	"regulation-chat-be/pkg/rag/search"
)

const (
	// HistoryWindow is the number of recent turns included in the prompt.
	HistoryWindow = 5

	// maxContextChars bounds the rendered source context so the prompt stays
	// within the generation model's input budget.
	maxContextChars = 12000
)

// Relevance bands shown next to each source. Coarse labels read better in a
// prompt than raw cosine scores.
const (
	bandHigh   = "HIGH relevance"
	bandMedium = "MEDIUM relevance"
	bandLow    = "LOW relevance"
)

func relevanceBand(similarity float64) string {
	switch {
	case similarity > 0.8:
		return bandHigh
	case similarity > 0.6:
		return bandMedium
	default:
		return bandLow
	}
}

const systemInstruction = `You are an assistant answering questions about Australian aged care and retirement regulations, using ONLY the source extracts provided below.

Rules:
- Answer from the provided sources. If they do not contain the answer, say so plainly.
- When citing, reference sources as [document title, section] only. NEVER cite page numbers, even if a page appears in the extract.
- Quote exact fee amounts, dates and thresholds verbatim from the sources.
- Keep the answer focused on the question. Do not speculate beyond the sources.`

// Build renders the full prompt as a message history: the instruction and
// source context, the last HistoryWindow turns, then the current question.
func Build(question string, citations []*search.Citation, history []llm.Message) []llm.Message {
	var context strings.Builder
	context.WriteString(systemInstruction)
	context.WriteString("\n\nSOURCE EXTRACTS:\n")

	if len(citations) == 0 {
		context.WriteString("(none)\n")
	}
	for i, c := range citations {
		entry := renderCitation(i+1, c)
		if context.Len()+len(entry) > maxContextChars {
			break
		}
		context.WriteString(entry)
	}

	if summary := sectionSummary(citations); summary != "" {
		context.WriteString(summary)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: context.String()})
	messages = append(messages, llm.Message{
		Role:    llm.RoleModel,
		Content: "Understood. I will answer from the provided sources and cite them as [document title, section] without page numbers.",
	})

	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	messages = append(messages, history...)

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	return messages
}

// sectionSummary lists the distinct section titles present in the sources,
// giving the model the document structure to cite against.
func sectionSummary(citations []*search.Citation) string {
	seen := make(map[string]struct{}, len(citations))
	var sections []string
	for _, c := range citations {
		if c.SectionTitle == "" {
			continue
		}
		if _, dup := seen[c.SectionTitle]; dup {
			continue
		}
		seen[c.SectionTitle] = struct{}{}
		sections = append(sections, c.SectionTitle)
	}
	if len(sections) == 0 {
		return ""
	}
	return "Sections referenced above: " + strings.Join(sections, "; ") + "\n"
}

func renderCitation(ordinal int, c *search.Citation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Source %d (%s) ---\n", ordinal, relevanceBand(c.Similarity))
	fmt.Fprintf(&b, "Document: %s\n", c.DocumentTitle)
	if c.SectionTitle != "" {
		fmt.Fprintf(&b, "Section: %s\n", c.SectionTitle)
	}
	b.WriteString(c.Content)
	b.WriteString("\n\n")
	return b.String()
}
