package app

import (
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"pilemap/internal/board"
	"pilemap/internal/config"
	"pilemap/internal/layout"
	"pilemap/internal/resolve"
	"pilemap/internal/sheet"
)

// buildBoard wires source, resolver and layout from cfg. The registry is
// seeded from the positions file, or the simulated table when none is set.
func buildBoard(cfg config.Config, client *http.Client) (*board.Board, error) {
	parser, err := sheet.NewParser(cfg.Parser, sheet.HeaderCandidates{
		ID:     cfg.IDHeaders,
		Status: cfg.StatusHeaders,
		Notes:  cfg.NotesHeaders,
	})
	if err != nil {
		return nil, err
	}
	url := sheet.CSVURL(cfg.SheetBaseURL, cfg.SheetID, cfg.SheetName)
	source := sheet.NewSource(url, parser, client)

	static := resolve.SimulatedPositions()
	if path := strings.TrimSpace(cfg.PositionsPath); path != "" {
		static, err = resolve.LoadPositionsFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading positions: %w", err)
		}
		log.Printf("Loaded %d positions from %s", len(static), path)
	}
	registry := resolve.NewRegistry(static)

	resolver, err := resolve.New(cfg.Resolver, cfg.GridColumns, registry)
	if err != nil {
		return nil, err
	}
	grid := layout.Grid{Columns: cfg.GridColumns, MarginX: cfg.GridMarginX, MarginY: cfg.GridMarginY}
	return board.New(source, resolver, registry, grid), nil
}
