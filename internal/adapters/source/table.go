package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"visit-model-service/internal/domain"
)

// RowError describes one source row that failed normalization. Rows with
// errors are skipped; the rest of the table is still read.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

// table is a header-indexed CSV body.
type table struct {
	columns map[string]int
	rows    [][]string
}

// readTable reads a CSV with a header row. The delimiter (',' or ';') is
// sniffed from the header line.
func readTable(r io.Reader) (*table, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read table: %w", err)
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, errors.New("read table: empty input")
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	t := &table{columns: make(map[string]int, len(records[0]))}
	for i, h := range records[0] {
		key := headerKey(h)
		if _, dup := t.columns[key]; !dup {
			t.columns[key] = i
		}
	}
	t.rows = records[1:]
	return t, nil
}

func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// headerKey folds a header cell for alias lookup: lower case, BOM and
// surrounding space removed, inner whitespace collapsed.
func headerKey(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// has reports whether any alias is a column.
func (t *table) has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := t.columns[a]; ok {
			return true
		}
	}
	return false
}

// get returns the first non-empty cell among the aliases.
func (t *table) get(row []string, aliases ...string) string {
	for _, a := range aliases {
		i, ok := t.columns[a]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseFloat accepts both "59.33" and "59,33".
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func parseCoordinates(lat, lon string) (domain.Coordinates, error) {
	if lat == "" && lon == "" {
		return domain.Coordinates{}, nil
	}
	la, err := parseFloat(lat)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("latitude %q: %w", lat, err)
	}
	lo, err := parseFloat(lon)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("longitude %q: %w", lon, err)
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return domain.Coordinates{}, fmt.Errorf("coordinates %s,%s out of range", lat, lon)
	}
	return domain.Coordinates{Lat: la, Lon: lo}, nil
}

// parseMinutes accepts "45", "45 min" and "1:30".
func parseMinutes(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}
	if h, m, ok := strings.Cut(s, ":"); ok {
		hh, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil {
			return 0, fmt.Errorf("minutes %q: %w", s, err)
		}
		mm, err := strconv.Atoi(strings.TrimSpace(m))
		if err != nil {
			return 0, fmt.Errorf("minutes %q: %w", s, err)
		}
		return hh*60 + mm, nil
	}

	s = strings.TrimSpace(strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyz."))
	f, err := parseFloat(s)
	if err != nil {
		return 0, fmt.Errorf("minutes %q: %w", s, err)
	}
	return int(f + 0.5), nil
}
