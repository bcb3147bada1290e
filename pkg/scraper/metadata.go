package scraper

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sisyphuswastaken/web-scraper/internal/util"

	"github.com/araddon/dateparse"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	wordsPerMinute = 200
	maxBioLength   = 500
)

var (
	bylinePattern      = regexp.MustCompile(`\b[Bb][Yy]\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	readingTimePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:min|minute)s?\s*read`)

	textDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`),
		regexp.MustCompile(`\b([A-Z][a-z]+\s+\d{1,2},?\s+\d{4})\b`),
		regexp.MustCompile(`\b(\d{4}[-/]\d{1,2}[-/]\d{1,2})\b`),
	}
)

// Metadata describes an article beyond its readable text. Every field is
// optional; zero values mean the page did not expose the information.
type Metadata struct {
	PublishDate *time.Time `json:"publish_date,omitempty"`
	Author      string     `json:"author,omitempty"`
	AuthorBio   string     `json:"author_bio,omitempty"`
	Tags        []string   `json:"tags"`
	Categories  []string   `json:"categories"`
	ReadingTime int        `json:"reading_time,omitempty"`
	WordCount   int        `json:"word_count"`
}

// ExtractMetadata collects publication details from a parsed HTML document
// and the article's plain text. doc may be nil when the source was not HTML.
// Dates without a zone are read as UTC.
//
// Dates are taken from <time datetime>, article:published_time and
// <meta name="date">, in that order, and fall back to the first date-like
// string in rawText. Reading time falls back to one minute per 200 words.
func ExtractMetadata(rawText string, doc *html.Node) Metadata {
	md := Metadata{
		Tags:       []string{},
		Categories: []string{},
	}

	if doc != nil {
		extractFromDocument(doc, &md)
	}

	if rawText != "" {
		md.WordCount = len(strings.Fields(rawText))
		if md.ReadingTime == 0 && md.WordCount > 0 {
			md.ReadingTime = max(1, md.WordCount/wordsPerMinute)
		}
	}

	if md.PublishDate == nil && rawText != "" {
		md.PublishDate = dateFromText(rawText)
	}

	return md
}

type documentScan struct {
	timeDate    string
	publishedAt string
	metaDate    string
	metaAuthor  string
	spanAuthor  string
	relAuthor   string
	bio         string
	tags        []string
	categories  []string
	text        strings.Builder
}

func extractFromDocument(doc *html.Node, md *Metadata) {
	scan := &documentScan{}
	scan.walk(doc)

	for _, candidate := range []string{scan.timeDate, scan.publishedAt, scan.metaDate} {
		if candidate == "" {
			continue
		}
		if t, err := dateparse.ParseIn(candidate, time.UTC); err == nil {
			md.PublishDate = &t
			break
		}
	}

	text := scan.text.String()
	for _, candidate := range []string{scan.metaAuthor, scan.spanAuthor, scan.relAuthor} {
		if candidate != "" {
			md.Author = candidate
			break
		}
	}
	if md.Author == "" {
		if m := bylinePattern.FindStringSubmatch(text); m != nil {
			md.Author = strings.TrimSpace(m[1])
		}
	}

	if scan.bio != "" {
		md.AuthorBio = util.Truncate(scan.bio, maxBioLength)
	}

	md.Tags = uniqueSorted(scan.tags)
	md.Categories = uniqueSorted(scan.categories)

	if m := readingTimePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			md.ReadingTime = n
		}
	}
}

func (s *documentScan) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		s.text.WriteString(n.Data)
		s.text.WriteByte(' ')
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript:
			return
		case atom.Time:
			if s.timeDate == "" {
				s.timeDate = strings.TrimSpace(attr(n, "datetime"))
			}
		case atom.Meta:
			s.meta(n)
		case atom.Span:
			if s.spanAuthor == "" && classContains(n, "author") {
				s.spanAuthor = strings.TrimSpace(nodeText(n))
			}
		case atom.A:
			s.link(n)
		case atom.Div:
			if s.bio == "" && classContains(n, "author-bio") {
				s.bio = strings.TrimSpace(nodeText(n))
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c)
	}
}

func (s *documentScan) meta(n *html.Node) {
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}

	switch strings.ToLower(attr(n, "property")) {
	case "article:published_time":
		if s.publishedAt == "" {
			s.publishedAt = content
		}
	case "article:tag":
		s.tags = append(s.tags, content)
	case "article:section":
		s.categories = append(s.categories, content)
	}

	switch strings.ToLower(attr(n, "name")) {
	case "date":
		if s.metaDate == "" {
			s.metaDate = content
		}
	case "author":
		if s.metaAuthor == "" {
			s.metaAuthor = content
		}
	}
}

func (s *documentScan) link(n *html.Node) {
	text := strings.TrimSpace(nodeText(n))
	if text == "" {
		return
	}
	for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
		switch rel {
		case "author":
			if s.relAuthor == "" {
				s.relAuthor = text
			}
		case "tag":
			s.tags = append(s.tags, text)
		case "category":
			s.categories = append(s.categories, text)
		}
	}
}

func dateFromText(text string) *time.Time {
	for _, pattern := range textDatePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if t, err := dateparse.ParseIn(m[1], time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func classContains(n *html.Node, needle string) bool {
	return strings.Contains(strings.ToLower(attr(n, "class")), needle)
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func uniqueSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
