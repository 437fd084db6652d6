package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pilemap/internal/board"
	"pilemap/internal/config"
	"pilemap/internal/httpx"
	"pilemap/internal/render"
	"pilemap/internal/summary"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write a static HTML page to the output dir",
	RunE:  runRender,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the current status counts",
	RunE:  runSummary,
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	b, err := buildBoard(cfg, httpx.Client())
	if err != nil {
		return err
	}
	b.Refresh(cmd.Context())

	path, err := writePage(b, cfg, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	b, err := buildBoard(cfg, httpx.Client())
	if err != nil {
		return err
	}
	sum := b.Refresh(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), summary.Format(sum))
	return nil
}

// writePage renders the board to <sheet>_<yyyymmdd>.html in the output dir.
func writePage(b *board.Board, cfg config.Config, now time.Time) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", err
	}
	surface := render.NewHTMLSurface()
	if err := b.Render(surface, cfg.ContainerWidth, cfg.ContainerHeight); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s.html", sanitizeFilename(cfg.SheetName), now.Format("20060102"))
	path := filepath.Join(cfg.OutputDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	err = surface.WriteTo(f, render.PageOptions{
		Title:       cfg.SheetName,
		Image:       cfg.DrawingImage,
		Width:       cfg.ContainerWidth,
		Height:      cfg.ContainerHeight,
		GeneratedAt: now,
	})
	if err != nil {
		return "", err
	}
	log.Printf("Page written to %s (%d markers)", path, len(surface.Markers()))
	return path, f.Close()
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
