package routes

import (
	"net/http"

	"github.com/sisyphuswastaken/web-scraper/internal/server/middleware"
	"github.com/sisyphuswastaken/web-scraper/internal/server/util"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"

	"github.com/labstack/echo/v4"
)

type scrapeResponse struct {
	Success     bool     `json:"success"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	Authors     []string `json:"authors"`
	PublishDate *string  `json:"publish_date"`
}

func GetScrapeHandler(c echo.Context) error {
	type scrapeParams struct {
		URL string `query:"url" validate:"required,url"`
	}

	params := new(scrapeParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	article, err := app.Scraper.Scrape(ctx, params.URL)
	if err != nil {
		code, msg := util.ScrapeErrorStatus(err)
		logger.Error("[Server] Scrape failed", "url", params.URL, "err", err)
		return c.JSON(code, map[string]string{"error": msg})
	}

	info := util.NewArticleInfo(article, "No title")
	return c.JSON(http.StatusOK, scrapeResponse{
		Success:     true,
		URL:         params.URL,
		Title:       info.Title,
		Text:        article.Text,
		Authors:     info.Authors,
		PublishDate: info.PublishDate,
	})
}
