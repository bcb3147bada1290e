// Package cleaner strips page chrome (navigation, share buttons, cookie
// banners, comment widgets and promotions) from extracted article text and
// normalizes what is left.
package cleaner

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// boilerplateMaxWords bounds the lines on which single keywords such as
// "Home" or "Share" are stripped. Longer lines and lines ending like a
// sentence are treated as prose.
const boilerplateMaxWords = 10

// promoLineMaxWords bounds the lines RemovePromotional drops for mentioning
// a promotional keyword.
const promoLineMaxWords = 20

// phrasePatterns are removed wherever they occur, up to the end of the line
// where the phrase introduces a widget.
var phrasePatterns = compile(
	// navigation
	`(?i)You are here:?[^\n]*`,
	`(?i)Home\s*[>»›]\s*\w+(?:\s*[>»›]\s*\w+)*`,
	// social
	`(?i)Share this:?[^\n]*`,
	`(?i)Follow us on[^\n]*`,
	// calls to action
	`(?i)Enter your email[^\n]*`,
	`(?i)Join our newsletter[^\n]*`,
	// comments
	`(?im)^Comments?\b:?[^\n]*`,
	`(?i)\b\d+\s+comments?\b`,
	`(?i)Leave a comment[^\n]*`,
	`(?i)Post a comment[^\n]*`,
	// cookies
	`(?i)We use cookies[^\n]*`,
	`(?i)This website uses cookies[^\n]*`,
	`(?i)By continuing to use[^\n]*`,
	`(?i)Accept cookies[^\n]*`,
)

var promoPhrasePatterns = compile(
	`(?i)This post contains affiliate links`,
	`(?i)Disclosure:[^\n]*`,
	`(?i)Partner content`,
)

// keywordPatterns are only applied to boilerplate lines.
var keywordPatterns = compile(
	`(?i)\b(Home|About|Contact|Privacy Policy|Terms of Service|FAQ|Search)\b`,
	`(?i)\b(Menu|Navigation|Breadcrumb|Sitemap)\b`,
	`(?i)\b(Share|Tweet|Like|Follow|Subscribe)\b`,
	`(?i)\b(Facebook|Twitter|LinkedIn|Instagram|Pinterest|Reddit)\b`,
	`(?i)\b(Sign up|Register|Join|Download|Get Started|Learn More|Read More|Click Here)\b`,
)

var promoKeywordPatterns = compile(
	`(?i)\b(Advertisement|Sponsored|Promoted|Ad)\b`,
)

var promoLineKeywords = []string{"advertisement", "sponsored", "affiliate", "promotion", "banner"}

var (
	citationPattern  = regexp.MustCompile(`\[\d+\]`)
	blankRunPattern  = regexp.MustCompile(`\n\s*\n\s*\n+`)
	horizontalSpaces = regexp.MustCompile(`[ \t]+`)
)

// entities left behind by double-escaped markup.
var residualEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&#39;", "'",
	"&mdash;", "—",
	"&ndash;", "–",
	"&hellip;", "...",
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Clean removes page chrome from raw article text, unescapes HTML entities,
// drops citation markers like "[3]" from short sentences and normalizes
// whitespace. Paragraph breaks are kept as a single blank line.
//
// Example:
//
//	cleaned := cleaner.Clean("Home | About\n\nObama visited Kenya[1].")
//	// "Obama visited Kenya."
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := replaceAll(raw, phrasePatterns)
	text = replaceAll(text, promoPhrasePatterns)
	text = stripBoilerplateLines(text, keywordPatterns, promoKeywordPatterns)

	text = html.UnescapeString(text)
	text = residualEntities.Replace(text)

	text = stripCitations(text)

	return normalizeWhitespace(text)
}

// RemovePromotional drops advertising from text: promotional phrases,
// "Advertisement" style labels and short lines that mention sponsorship,
// affiliates, promotions or banners.
func RemovePromotional(text string) string {
	if text == "" {
		return ""
	}

	cleaned := replaceAll(text, promoPhrasePatterns)
	cleaned = stripBoilerplateLines(cleaned, promoKeywordPatterns)

	lines := strings.Split(cleaned, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isPromoLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	cleaned = strings.Join(kept, "\n")
	cleaned = blankRunPattern.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

func replaceAll(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

func stripBoilerplateLines(text string, groups ...[]*regexp.Regexp) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !isBoilerplate(line) {
			continue
		}
		stripped := line
		for _, patterns := range groups {
			stripped = replaceAll(stripped, patterns)
		}
		if stripped != line && !hasWordChars(stripped) {
			stripped = ""
		}
		lines[i] = stripped
	}
	return strings.Join(lines, "\n")
}

// isBoilerplate reports whether line looks like a menu entry, button label
// or banner rather than prose.
func isBoilerplate(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	if len(strings.Fields(t)) > boilerplateMaxWords {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(t)
	return !strings.ContainsRune(".!?\"”", last)
}

func isPromoLine(line string) bool {
	if len(strings.Fields(line)) > promoLineMaxWords {
		return false
	}
	lower := strings.ToLower(line)
	for _, kw := range promoLineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasWordChars(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// stripCitations removes reference markers from sentences of at most 50
// characters. Longer sentences keep them; a sentence that was only a marker
// disappears.
func stripCitations(text string) string {
	sentences := strings.Split(text, ".")
	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if !citationPattern.MatchString(s) || len(strings.TrimSpace(s)) > 50 {
			kept = append(kept, s)
			continue
		}
		if cleaned := citationPattern.ReplaceAllString(s, ""); strings.TrimSpace(cleaned) != "" {
			kept = append(kept, cleaned)
		}
	}
	return strings.Join(kept, ".")
}

func normalizeWhitespace(text string) string {
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	text = horizontalSpaces.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
