package llm

import (
	"strings"
	"unicode"
)

// ExtractCategory resolves a free-text model answer to one of categories.
//
// Lines are scanned in order. On each line an exact case-insensitive match is
// tried first, then a substring match where the first category in caller
// order wins. If no line matches, the first line is stripped of everything
// that is not a word character or whitespace and the same two checks are
// retried on it. Returns nil when nothing matches.
func ExtractCategory(response string, categories []string) *string {
	if response == "" {
		return nil
	}

	normalized := make([]string, len(categories))
	for i, category := range categories {
		normalized[i] = strings.ToLower(category)
	}

	var lines []string
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	for _, line := range lines {
		if idx := matchCategory(strings.ToLower(line), normalized); idx >= 0 {
			return categoryAt(categories, idx)
		}
	}

	if len(lines) == 0 {
		return nil
	}

	cleaned := strings.ToLower(stripPunctuation(lines[0]))
	if strings.TrimSpace(cleaned) == "" {
		return nil
	}

	if idx := matchCategory(cleaned, normalized); idx >= 0 {
		return categoryAt(categories, idx)
	}

	return nil
}

// categoryAt returns a pointer to a copy of categories[idx].
func categoryAt(categories []string, idx int) *string {
	category := categories[idx]
	return &category
}

// matchCategory returns the index of the category equal to text, else the
// first category contained in text, else -1. Empty categories never match.
func matchCategory(text string, normalized []string) int {
	for i, category := range normalized {
		if category != "" && category == text {
			return i
		}
	}

	for i, category := range normalized {
		if category != "" && strings.Contains(text, category) {
			return i
		}
	}

	return -1
}

// stripPunctuation keeps ASCII word characters and whitespace.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, s)
}
