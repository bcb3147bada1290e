package server

import (
	"github.com/sisyphuswastaken/web-scraper/internal/server/middleware"
	"github.com/sisyphuswastaken/web-scraper/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, app *middleware.App) {
	e.GET("/", routes.GetIndexHandler)
	e.GET("/health", routes.GetHealthHandler)

	// Article routes
	e.GET("/scrape", routes.GetScrapeHandler)
	e.POST("/process", routes.ProcessArticleHandler)

	// Text utility routes
	e.POST("/clean", routes.CleanTextHandler)
	e.POST("/chunk", routes.ChunkTextHandler)

	apiRoutes := e.Group("/api")
	apiRoutes.POST("/process", routes.ExportArticleHandler)

	if app.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(app.Metrics))
	}
}
