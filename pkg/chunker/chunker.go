package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxChunkSize is the target upper bound on chunk content length.
	DefaultMaxChunkSize = 1000

	// DefaultOverlap is the approximate character overlap carried from the
	// tail of the previous chunk when splitting within a page.
	DefaultOverlap = 200

	// EarlyPageCap bounds the page numbers assigned in the size-based
	// fallback path. Front matter estimates are comparatively reliable;
	// everything past the reliable window is marked unknown instead.
	EarlyPageCap = 50
)

// Chunk is one retrievable unit produced from a document's text.
type Chunk struct {
	Content      string
	SectionTitle string
	Page         PageRef
	Index        int
}

// Chunker splits extracted text into bounded chunks whose page claims never
// exceed the document's authoritative page count. It would rather emit an
// unknown page than a fabricated one.
type Chunker struct {
	MaxChunkSize int
	Overlap      int
}

func New() *Chunker {
	return &Chunker{
		MaxChunkSize: DefaultMaxChunkSize,
		Overlap:      DefaultOverlap,
	}
}

// Split chunks text for a document with the given authoritative page count.
// Page-break markers (form feeds) are used when their count is sane; otherwise
// a conservative size-based split assigns real pages only to the early part of
// the document and the unknown sentinel to the rest.
func (c *Chunker) Split(text string, actualPages int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pages := strings.Split(text, "\f")

	var chunks []Chunk
	if len(pages) > 1 && len(pages) <= actualPages {
		chunks = c.splitByPages(pages, actualPages)
	} else {
		chunks = c.splitBySize(normalizeWhitespace(text), actualPages)
	}

	// Final safety net: no claim past the document's real length.
	for i := range chunks {
		chunks[i].Page = chunks[i].Page.Clamp(actualPages)
		chunks[i].Index = i
	}
	return chunks
}

// splitByPages chunks page by page. A page larger than the size bound is
// split on sentence boundaries with overlap, every piece keeping the page.
func (c *Chunker) splitByPages(pages []string, actualPages int) []Chunk {
	var chunks []Chunk

	for pageIndex, raw := range pages {
		pageText := normalizeWhitespace(raw)
		if pageText == "" {
			continue
		}

		page := PageKnown(pageIndex + 1).Clamp(actualPages)

		if len(pageText) <= c.MaxChunkSize {
			chunks = append(chunks, Chunk{
				Content:      pageText,
				SectionTitle: ExtractSectionTitle(pageText),
				Page:         page,
			})
			continue
		}

		for _, piece := range c.splitLargeText(pageText) {
			piece.Page = page
			chunks = append(chunks, piece)
		}
	}

	return chunks
}

// splitBySize is the conservative fallback when page breaks are missing or
// inconsistent. Only chunks in the reliable early window get a real page
// number (capped at EarlyPageCap); later chunks are explicitly unknown.
func (c *Chunker) splitBySize(text string, actualPages int) []Chunk {
	totalChunks := (len(text) + c.MaxChunkSize - 1) / c.MaxChunkSize

	pageWindow := actualPages
	if pageWindow > 10 {
		pageWindow = 10
	}
	if pageWindow < 1 {
		pageWindow = 1
	}
	reliableChunks := totalChunks / pageWindow
	if reliableChunks < 1 {
		reliableChunks = 1
	}

	var chunks []Chunk
	pos := 0
	for i := 0; pos < len(text); i++ {
		end := pos + c.MaxChunkSize
		if end > len(text) {
			end = len(text)
		} else {
			// Extend to a nearby sentence end so we do not cut mid-sentence.
			if stop := strings.IndexByte(text[end:], '.'); stop >= 0 && stop < 200 {
				end += stop + 1
			}
		}

		content := strings.TrimSpace(text[pos:end])
		pos = end
		if content == "" {
			continue
		}

		page := PageUnknown()
		if i < reliableChunks {
			n := i + 1
			if n > EarlyPageCap {
				n = EarlyPageCap
			}
			page = PageKnown(n)
		}

		chunks = append(chunks, Chunk{
			Content:      content,
			SectionTitle: ExtractSectionTitle(content),
			Page:         page,
		})
	}

	return chunks
}

// splitLargeText splits oversized page text on sentence boundaries. A short
// sentence that looks like a section heading starts a new chunk; otherwise
// chunks roll over at the size bound carrying a word-level overlap.
func (c *Chunker) splitLargeText(text string) []Chunk {
	var chunks []Chunk

	flush := func(content, title string) {
		content = strings.TrimSpace(content)
		if content != "" {
			chunks = append(chunks, Chunk{Content: content, SectionTitle: title})
		}
	}

	var current strings.Builder
	currentTitle := ""

	for _, sentence := range splitSentences(text) {
		if title := ExtractSectionTitle(sentence); title != "" && len(sentence) < 150 {
			flush(current.String(), currentTitle)
			current.Reset()
			current.WriteString(sentence)
			currentTitle = title
			continue
		}

		if current.Len()+len(sentence)+1 > c.MaxChunkSize {
			flush(current.String(), currentTitle)

			overlap := tailWords(current.String(), c.Overlap/6)
			current.Reset()
			if overlap != "" {
				current.WriteString(overlap)
				current.WriteString(" ")
			}
			current.WriteString(sentence)
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	flush(current.String(), currentTitle)
	return chunks
}

var sentenceEndRe = regexp.MustCompile(`([.!?])\s+`)

// splitSentences splits after terminal punctuation followed by whitespace.
func splitSentences(text string) []string {
	marked := sentenceEndRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// tailWords returns the last n words of s, used as overlap carry-over.
func tailWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-n:], " ")
}

var wsRe = regexp.MustCompile(`[ \t\r\n\v\f]+`)

// normalizeWhitespace collapses whitespace runs to single spaces, preserving
// nothing but the visible text.
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}
