package routes

import (
	"net/http"

	"github.com/sisyphuswastaken/web-scraper/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetIndexHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "Backend running",
		"endpoints": map[string]string{
			"/scrape":      "GET - Scrape article content",
			"/process":     "POST - Full pipeline: scrape, clean, chunk, extract, graph",
			"/api/process": "POST - Full pipeline, graph export format",
			"/clean":       "POST - Clean article text",
			"/chunk":       "POST - Chunk article text",
			"/health":      "GET - Health check",
		},
	})
}

// GetHealthHandler reports service status and, when a model client is
// configured, the token usage accumulated since startup.
func GetHealthHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	body := map[string]any{
		"status": "healthy",
		"services": map[string]string{
			"scraper": "operational",
			"nlp":     "operational",
		},
	}
	if app.AI != nil {
		body["model_usage"] = app.AI.GetMetrics()
	}
	return c.JSON(http.StatusOK, body)
}
