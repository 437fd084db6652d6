package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"pilemap/internal/config"
	"pilemap/internal/domain"
)

type Parser interface {
	Parse(r io.Reader) ([]domain.PileRecord, error)
}

// HeaderCandidates lists, per field, the header names tried in order.
type HeaderCandidates struct {
	ID     []string
	Status []string
	Notes  []string
}

func NewParser(name string, headers HeaderCandidates) (Parser, error) {
	switch name {
	case config.ParserNaive:
		return NaiveParser{}, nil
	case config.ParserHeader:
		return HeaderParser{Headers: headers}, nil
	default:
		return nil, fmt.Errorf("unknown parser %q", name)
	}
}

// NaiveParser splits on newlines and commas with fixed column positions
// (id, status, notes). Quoted commas and embedded newlines are not supported.
type NaiveParser struct{}

func (NaiveParser) Parse(r io.Reader) ([]domain.PileRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rows := strings.Split(string(data), "\n")
	records := make([]domain.PileRecord, 0, len(rows))
	for _, row := range rows[1:] {
		if strings.TrimSpace(row) == "" {
			continue
		}
		values := strings.Split(row, ",")
		status := strings.ToLower(naiveField(values, 1))
		if status == "" {
			status = domain.DefaultStatus
		}
		records = append(records, domain.PileRecord{
			ID:     naiveField(values, 0),
			Status: status,
			Notes:  naiveField(values, 2),
		})
	}
	return records, nil
}

func naiveField(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	v := strings.TrimSpace(values[i])
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

// HeaderParser reads RFC 4180 CSV and picks each field from the first
// candidate header with a non-empty value in that row.
type HeaderParser struct {
	Headers HeaderCandidates
}

func (p HeaderParser) Parse(r io.Reader) ([]domain.PileRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.PileRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var records []domain.PileRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}
		status := strings.ToLower(pick(row, index, p.Headers.Status))
		if status == "" {
			status = domain.DefaultStatus
		}
		records = append(records, domain.PileRecord{
			ID:     pick(row, index, p.Headers.ID),
			Status: status,
			Notes:  pick(row, index, p.Headers.Notes),
		})
	}
	if records == nil {
		records = []domain.PileRecord{}
	}
	return records, nil
}

func pick(row []string, index map[string]int, candidates []string) string {
	for _, name := range candidates {
		i, ok := index[normalizeHeader(name)]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
