package middleware

import (
	"net/http"

	"github.com/sisyphuswastaken/web-scraper/internal/config"
	"github.com/sisyphuswastaken/web-scraper/pkg/ai"
	"github.com/sisyphuswastaken/web-scraper/pkg/pipeline"

	"github.com/labstack/echo/v4"
)

// App holds the long-lived services shared by all handlers.
type App struct {
	Settings *config.Settings
	Scraper  pipeline.ArticleScraper
	Pipeline *pipeline.Pipeline
	// AI is the extraction model client, reported on /health.
	AI ai.GraphAIClient
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context in an AppContext
// carrying app.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
