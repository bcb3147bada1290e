package routes

import (
	"net/http"

	"github.com/sisyphuswastaken/web-scraper/internal/server/middleware"
	"github.com/sisyphuswastaken/web-scraper/internal/server/util"
	"github.com/sisyphuswastaken/web-scraper/pkg/graph"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"
	"github.com/sisyphuswastaken/web-scraper/pkg/pipeline"

	"github.com/labstack/echo/v4"
)

type processParams struct {
	URL string `json:"url" validate:"required,url"`
	// Options is accepted for client compatibility and currently ignored.
	Options map[string]any `json:"options"`
}

type processStats struct {
	Chunks        int   `json:"chunks"`
	FailedChunks  int   `json:"failed_chunks"`
	RawEntities   int   `json:"raw_entities"`
	Entities      int   `json:"entities"`
	Relationships int   `json:"relationships"`
	Nodes         int   `json:"nodes"`
	Edges         int   `json:"edges"`
	Unresolved    int   `json:"unresolved"`
	Malformed     int   `json:"malformed"`
	DurationMs    int64 `json:"duration_ms"`
}

type processResponse struct {
	Success     bool             `json:"success"`
	RequestID   string           `json:"request_id"`
	Graph       graph.Document   `json:"graph"`
	ArticleInfo util.ArticleInfo `json:"article_info"`
	Stats       processStats     `json:"stats"`
	Message     string           `json:"message"`
}

type exportResponse struct {
	RequestID   string           `json:"request_id"`
	ArticleInfo util.ArticleInfo `json:"article_info"`
	graph.ExportDocument
}

// processURL runs the pipeline for url and logs failures.
func processURL(c echo.Context, url string) (*pipeline.Result, error) {
	app := c.(*middleware.AppContext).App

	logger.Info("[Server] Processing article", "url", url)
	res, err := app.Pipeline.Process(c.Request().Context(), url)
	if err != nil {
		logger.Error("[Server] Pipeline failed", "url", url, "err", err)
		return nil, err
	}
	return res, nil
}

func ProcessArticleHandler(c echo.Context) error {
	params := new(processParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	res, err := processURL(c, params.URL)
	if err != nil {
		code, msg := util.ProcessErrorStatus(err)
		return c.JSON(code, map[string]string{"error": msg})
	}

	s := res.Stats
	return c.JSON(http.StatusOK, processResponse{
		Success:     true,
		RequestID:   res.RequestID,
		Graph:       graph.ToJSON(res.Graph),
		ArticleInfo: util.NewArticleInfo(res.Article, "Untitled"),
		Stats: processStats{
			Chunks:        s.Chunks,
			FailedChunks:  s.FailedChunks,
			RawEntities:   s.RawEntities,
			Entities:      s.Entities,
			Relationships: s.RawRelationships,
			Nodes:         s.Nodes,
			Edges:         s.Edges,
			Unresolved:    s.Unresolved,
			Malformed:     s.Malformed,
			DurationMs:    s.DurationMs,
		},
		Message: "Graph generated successfully",
	})
}

func ExportArticleHandler(c echo.Context) error {
	params := new(processParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	res, err := processURL(c, params.URL)
	if err != nil {
		code, msg := util.ProcessErrorStatus(err)
		return c.JSON(code, map[string]string{"error": msg})
	}

	return c.JSON(http.StatusOK, exportResponse{
		RequestID:      res.RequestID,
		ArticleInfo:    util.NewArticleInfo(res.Article, "Untitled"),
		ExportDocument: graph.Export(res.Graph),
	})
}
