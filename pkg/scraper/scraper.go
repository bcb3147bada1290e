package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sisyphuswastaken/web-scraper/internal/util"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultMinInterval = time.Second

	maxBodyBytes = 10 << 20
)

var (
	ErrInvalidURL         = errors.New("url must be an absolute http or https url")
	ErrNoContent          = errors.New("could not extract article content")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// Article is the readable content of a fetched page.
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	Authors     []string   `json:"authors"`
	PublishDate *time.Time `json:"publish_date"`
	Metadata    Metadata   `json:"metadata"`
}

// Scraper fetches article pages and extracts their main text.
type Scraper struct {
	client      *http.Client
	userAgent   string
	minInterval time.Duration

	group singleflight.Group
}

type ScraperParams struct {
	// Timeout bounds a whole fetch. Ignored when HTTPClient is set.
	Timeout   time.Duration
	UserAgent string
	// MinInterval is the minimum spacing between requests to one host.
	// Negative disables per-host limiting.
	MinInterval time.Duration
	HTTPClient  *http.Client
}

// NewScraper creates a Scraper. Zero-valued params fall back to
// DefaultTimeout, DefaultUserAgent and DefaultMinInterval.
//
// Example:
//
//	s := scraper.NewScraper(scraper.ScraperParams{Timeout: 10 * time.Second})
//	article, err := s.Scrape(ctx, "https://example.com/news/1")
func NewScraper(params ScraperParams) *Scraper {
	client := params.HTTPClient
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	userAgent := params.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	interval := params.MinInterval
	if interval == 0 {
		interval = DefaultMinInterval
	}

	return &Scraper{
		client:      client,
		userAgent:   userAgent,
		minInterval: interval,
	}
}

// Scrape downloads rawURL and returns its readable article. HTML pages go
// through readability, text/plain bodies are used as-is. Concurrent calls
// for the same URL share a single request.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Article, error) {
	u, err := parseArticleURL(rawURL)
	if err != nil {
		return nil, err
	}

	key := u.String()
	result, err, shared := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("[Scraper] Shared in-flight fetch", "url", key)
	}

	return result.(*Article), nil
}

func parseArticleURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

func (s *Scraper) fetch(ctx context.Context, u *url.URL) (*Article, error) {
	if err := waitForHost(ctx, u.Hostname(), s.minInterval); err != nil {
		return nil, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch url: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var article *Article
	switch mediaType(resp.Header.Get("Content-Type")) {
	case "text/html", "application/xhtml+xml", "":
		article, err = fromHTML(body, u)
	case "text/plain":
		article = fromPlainText(body, u)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedContent, resp.Header.Get("Content-Type"))
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(article.Text) == "" {
		return nil, ErrNoContent
	}

	logger.Info(
		"[Scraper] Fetched article",
		"url", article.URL,
		"title", article.Title,
		"words", article.Metadata.WordCount,
		"duration", time.Since(start),
	)

	return article, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

func fromHTML(body []byte, u *url.URL) (*Article, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	parsed, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := parsed.RenderText(&builder); err != nil {
		return nil, fmt.Errorf("failed to render article text: %w", err)
	}

	text := util.SanitizeText(strings.TrimSpace(builder.String()))
	md := ExtractMetadata(text, doc)

	authors := splitAuthors(parsed.Byline())
	if len(authors) == 0 && md.Author != "" {
		authors = []string{md.Author}
	}

	return &Article{
		URL:         u.String(),
		Title:       strings.TrimSpace(parsed.Title()),
		Text:        text,
		Authors:     authors,
		PublishDate: md.PublishDate,
		Metadata:    md,
	}, nil
}

func fromPlainText(body []byte, u *url.URL) *Article {
	text := util.SanitizeText(strings.TrimSpace(string(body)))
	md := ExtractMetadata(text, nil)

	return &Article{
		URL:         u.String(),
		Text:        text,
		Authors:     []string{},
		PublishDate: md.PublishDate,
		Metadata:    md,
	}
}

// splitAuthors turns a byline such as "By Jane Doe and John Roe" into
// individual names.
func splitAuthors(byline string) []string {
	byline = strings.TrimSpace(byline)
	if len(byline) > 3 && strings.EqualFold(byline[:3], "by ") {
		byline = byline[3:]
	}

	authors := []string{}
	for _, part := range strings.FieldsFunc(strings.ReplaceAll(byline, " and ", ","), func(r rune) bool {
		return r == ',' || r == '&' || r == ';'
	}) {
		if name := strings.TrimSpace(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
