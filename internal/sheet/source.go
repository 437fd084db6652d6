package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"pilemap/internal/domain"
)

var (
	ErrNetwork = errors.New("sheet fetch failed")
	ErrParse   = errors.New("sheet parse failed")
)

const maxBodyBytes = 16 << 20

// CSVURL builds the published CSV export URL for one sheet.
func CSVURL(base, sheetID, sheetName string) string {
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s",
		strings.TrimRight(base, "/"), url.PathEscape(sheetID), url.QueryEscape(sheetName))
}

type Source struct {
	URL    string
	Parser Parser
	Client *http.Client
}

func NewSource(rawURL string, parser Parser, client *http.Client) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{URL: rawURL, Parser: parser, Client: client}
}

// Fetch downloads and parses the sheet. Errors wrap ErrNetwork or ErrParse.
func (s *Source) Fetch(ctx context.Context) ([]domain.PileRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: sheet returned %d: %s", ErrNetwork, resp.StatusCode, snippet(body))
	}

	records, err := s.Parser.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return records, nil
}

// Load is Fetch with failures logged and degraded to an empty result.
func (s *Source) Load(ctx context.Context) []domain.PileRecord {
	records, err := s.Fetch(ctx)
	if err != nil {
		log.Printf("Error fetching pile data: %v", err)
		return []domain.PileRecord{}
	}
	log.Debugf("sheet fetch done records=%d", len(records))
	return records
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
