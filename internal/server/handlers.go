package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"pilemap/internal/board"
	"pilemap/internal/domain"
	"pilemap/internal/render"
	"pilemap/internal/schedule"
	"pilemap/internal/storage/sqlite"
	"pilemap/internal/summary"
)

// Refresher re-fetches the board on request, tagging the run with its source.
type Refresher interface {
	Run(ctx context.Context, source string) summary.Summary
}

type Options struct {
	Title   string
	Image   string
	Width   float64
	Height  float64
	History *sql.DB // nil disables /api/history
}

// Register wires up the page and API routes on the provided Echo instance.
func Register(e *echo.Echo, b *board.Board, refresher Refresher, opts Options) {
	e.GET("/", getPage(b, opts))
	e.GET("/api/markers", getMarkers(b, opts))
	e.GET("/api/summary", getSummary(b))
	e.GET("/api/search", getSearch(b, opts))
	e.POST("/api/refresh", postRefresh(refresher))
	e.GET("/api/mappings", getMappings(b))
	e.POST("/api/mappings", postMapping(b))
	if opts.History != nil {
		e.GET("/api/history", getHistory(opts.History))
	}
	e.GET("/healthz", healthz())
}

type errorResponse struct {
	Error string `json:"error"`
}

type markersResponse struct {
	Markers []render.Marker `json:"markers"`
	Summary summary.Summary `json:"summary"`
}

type searchResponse struct {
	Query  string        `json:"query"`
	Marker render.Marker `json:"marker"`
}

type mappingRequest struct {
	ID string   `json:"id"`
	X  *float64 `json:"x"`
	Y  *float64 `json:"y"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// containerSize reads optional width/height query params, falling back to
// the configured container size.
func containerSize(c echo.Context, opts Options) (float64, float64, error) {
	width, err := dimension(c.QueryParam("width"), opts.Width)
	if err != nil {
		return 0, 0, errors.New("invalid width")
	}
	height, err := dimension(c.QueryParam("height"), opts.Height)
	if err != nil {
		return 0, 0, errors.New("invalid height")
	}
	return width, height, nil
}

func dimension(raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("must be a positive number")
	}
	return v, nil
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getPage(b *board.Board, opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		width, height, err := containerSize(c, opts)
		if err != nil {
			return badRequest(c, err.Error())
		}
		surface := render.NewHTMLSurface()
		if err := b.Render(surface, width, height); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		var buf bytes.Buffer
		err = surface.WriteTo(&buf, render.PageOptions{
			Title:       opts.Title,
			Image:       opts.Image,
			Width:       width,
			Height:      height,
			Interactive: true,
			GeneratedAt: b.State().FetchedAt,
		})
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.HTMLBlob(http.StatusOK, buf.Bytes())
	}
}

func getMarkers(b *board.Board, opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		width, height, err := containerSize(c, opts)
		if err != nil {
			return badRequest(c, err.Error())
		}
		surface := render.NewMemorySurface()
		if err := b.Render(surface, width, height); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, markersResponse{Markers: surface.Markers(), Summary: surface.Summary()})
	}
}

func getSummary(b *board.Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, b.Summary())
	}
}

func getSearch(b *board.Board, opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParam("q")
		if strings.TrimSpace(q) == "" {
			return badRequest(c, "missing query")
		}
		width, height, err := containerSize(c, opts)
		if err != nil {
			return badRequest(c, err.Error())
		}
		m, ok := b.Search(q, width, height)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "no markers rendered"})
		}
		return c.JSON(http.StatusOK, searchResponse{Query: q, Marker: m})
	}
}

func postRefresh(refresher Refresher) echo.HandlerFunc {
	return func(c echo.Context) error {
		sum := refresher.Run(c.Request().Context(), schedule.SourceManual)
		return c.JSON(http.StatusOK, sum)
	}
}

// getMappings lists every known position, manual entries shadowing static ones.
func getMappings(b *board.Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, b.Registry().Snapshot())
	}
}

func postMapping(b *board.Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req mappingRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid mapping body")
		}
		if req.X == nil || req.Y == nil {
			return badRequest(c, "x and y are required")
		}
		pos := domain.Position{X: *req.X, Y: *req.Y}
		if err := b.MapPosition(req.ID, pos); err != nil {
			if errors.Is(err, board.ErrEmptyID) {
				return badRequest(c, err.Error())
			}
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusCreated, map[string]any{"id": strings.TrimSpace(req.ID), "x": pos.X, "y": pos.Y})
	}
}

func getHistory(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 0
		if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return badRequest(c, "invalid limit")
			}
			limit = n
		}
		start := time.Now()
		snaps, err := sqlite.RecentSnapshots(db, limit)
		if err != nil {
			log.Printf("Error loading history: %v", err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		log.Debugf("history: %d snapshots in %s", len(snaps), time.Since(start))
		return c.JSON(http.StatusOK, snaps)
	}
}
