package util

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sisyphuswastaken/web-scraper/pkg/pipeline"
	"github.com/sisyphuswastaken/web-scraper/pkg/scraper"
)

// ArticleInfo is the article summary returned next to a graph.
type ArticleInfo struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Authors     []string `json:"authors"`
	PublishDate *string  `json:"publish_date"`
}

// NewArticleInfo summarizes article. A missing title becomes fallbackTitle.
func NewArticleInfo(article *scraper.Article, fallbackTitle string) ArticleInfo {
	title := article.Title
	if title == "" {
		title = fallbackTitle
	}
	authors := article.Authors
	if authors == nil {
		authors = []string{}
	}
	return ArticleInfo{
		Title:       title,
		URL:         article.URL,
		Authors:     authors,
		PublishDate: FormatDate(article.PublishDate),
	}
}

// FormatDate renders t as RFC 3339, or nil when t is nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// ScrapeErrorStatus maps a scraper error to an HTTP status and message.
func ScrapeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, scraper.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid url"
	case errors.Is(err, scraper.ErrNoContent), errors.Is(err, scraper.ErrUnsupportedContent):
		return http.StatusBadRequest, "Could not extract article content"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Scraping failed: " + err.Error()
	default:
		return http.StatusInternalServerError, "Scraping failed: " + err.Error()
	}
}

// ProcessErrorStatus maps a pipeline error to an HTTP status and message.
func ProcessErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, scraper.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid url"
	case errors.Is(err, scraper.ErrNoContent),
		errors.Is(err, scraper.ErrUnsupportedContent),
		errors.Is(err, pipeline.ErrNoText):
		return http.StatusBadRequest, "Could not extract article"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Pipeline failed: " + err.Error()
	default:
		return http.StatusInternalServerError, "Pipeline failed: " + err.Error()
	}
}
