package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

var tableDelimRe = regexp.MustCompile(`^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)+\|?\s*$`)

func isTableRow(trimmed string) bool {
	return trimmed != "" && strings.Contains(trimmed, "|")
}

// endsSentence reports whether s ends in terminal punctuation, looking past
// closing quotes and brackets.
func endsSentence(s string) bool {
	s = strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return r < 0x80 && isCloser(byte(r))
	})
	return s != "" && isTerminal(s[len(s)-1])
}

// splitSentences splits text into sentences. Lines without terminal
// punctuation are joined with the next line until a blank line, a markdown
// table with a delimiter row is kept as one sentence, and numbered listings
// ("1. First 2. Second") are not split at their numbers.
func splitSentences(text string) []string {
	lines := strings.Split(text, "\n")

	var out []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	addProse := func(line string) {
		for _, s := range splitLine(line) {
			if cur.Len() > 0 {
				cur.WriteString(" ")
			}
			cur.WriteString(s)
			if endsSentence(s) {
				flush()
			}
		}
	}

	inTable := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inTable {
			if isTableRow(trimmed) {
				cur.WriteString("\n")
				cur.WriteString(line)
				continue
			}
			inTable = false
			flush()
			if trimmed != "" {
				addProse(trimmed)
			}
			continue
		}

		if isTableRow(trimmed) {
			flush()
			if i+1 < len(lines) && tableDelimRe.MatchString(strings.TrimSpace(lines[i+1])) {
				inTable = true
				cur.WriteString(line)
				continue
			}
			out = append(out, trimmed)
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}
		addProse(trimmed)
	}
	flush()

	return out
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isCloser(b byte) bool {
	return b == '"' || b == '\'' || b == ')' || b == ']' || b == '}'
}

// splitLine splits a single line at terminal punctuation, keeping runs of
// punctuation and closing quotes or brackets with the sentence they end.
func splitLine(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])
		if !isTerminal(line[i]) {
			continue
		}

		// "3. Third" is a listing number, not a sentence end
		if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
			continue
		}

		j := i + 1
		for j < len(line) && isTerminal(line[j]) {
			current.WriteByte(line[j])
			j++
		}
		for j < len(line) && isCloser(line[j]) {
			current.WriteByte(line[j])
			j++
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
		i = j - 1
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
