package routes

import (
	"net/http"
	"unicode/utf8"

	"github.com/sisyphuswastaken/web-scraper/internal/server/middleware"
	"github.com/sisyphuswastaken/web-scraper/pkg/common"

	"github.com/labstack/echo/v4"
)

// bindText reads "text" from a JSON body, falling back to the query string.
func bindText(c echo.Context) (string, bool) {
	type textParams struct {
		Text string `json:"text"`
	}

	params := new(textParams)
	if err := c.Bind(params); err != nil {
		return "", false
	}
	if params.Text == "" {
		params.Text = c.QueryParam("text")
	}
	return params.Text, true
}

func CleanTextHandler(c echo.Context) error {
	text, ok := bindText(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	p := c.(*middleware.AppContext).App.Pipeline
	cleaned := p.Clean(text)

	return c.JSON(http.StatusOK, map[string]any{
		"original_length": utf8.RuneCountInString(text),
		"cleaned_length":  utf8.RuneCountInString(cleaned),
		"cleaned_text":    cleaned,
	})
}

func ChunkTextHandler(c echo.Context) error {
	text, ok := bindText(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	p := c.(*middleware.AppContext).App.Pipeline
	chunks, err := p.Chunk(text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Chunking failed: " + err.Error()})
	}
	if chunks == nil {
		chunks = []common.Chunk{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"num_chunks": len(chunks),
		"chunks":     chunks,
	})
}
