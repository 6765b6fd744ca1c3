package index

import (
	"strings"
	"unicode"
)

// window is a contiguous slice of the normalized source text.
type window struct {
	start int // rune offset of the window in the normalized text
	text  string
}

// splitText cuts text into overlapping rune windows of chunkSize with
// chunkOverlap runes shared between consecutive windows, preserving source
// order. Overlap keeps semantic units that span a boundary retrievable from
// at least one window.
func splitText(text string, chunkSize, chunkOverlap int) []window {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}

	clean := normalizeWhitespace(text)
	if clean == "" {
		return nil
	}

	runes := []rune(clean)
	step := chunkSize - chunkOverlap

	var windows []window
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunkText := strings.TrimSpace(string(runes[start:end]))
		if chunkText != "" {
			windows = append(windows, window{start: start, text: chunkText})
		}
		if end == len(runes) {
			break
		}
	}
	return windows
}

func normalizeWhitespace(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	var prevSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			builder.WriteRune(' ')
			prevSpace = true
			continue
		}
		builder.WriteRune(r)
		prevSpace = false
	}

	return strings.TrimSpace(builder.String())
}
