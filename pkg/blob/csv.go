package blob

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/openrankprotocol/openrank-go/pkg/trust"
)

// TrustHeader is the literal header row of a trust CSV.
var TrustHeader = []string{"from", "to", "value"}

// SeedHeader is the literal header row of a seed/input-score CSV.
var SeedHeader = []string{"id", "value"}

// ScoresHeader is the literal header row of an output-scores CSV.
var ScoresHeader = []string{"i", "v"}

// EncodeTrustCSV writes a trust CSV (header `from,to,value`) in the
// given row order.
func EncodeTrustCSV(entries []trust.TrustEntry) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(TrustHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{e.From, e.To, formatFloat(e.Value)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// DecodeTrustCSV parses a trust CSV. A malformed row fails the whole job.
func DecodeTrustCSV(data []byte) ([]trust.TrustEntry, error) {
	rows, err := readRows(data, 3)
	if err != nil {
		return nil, fmt.Errorf("blob: decode trust csv: %w", err)
	}
	entries := make([]trust.TrustEntry, 0, len(rows))
	for i, row := range rows {
		v, err := strconv.ParseFloat(row[2], 32)
		if err != nil {
			return nil, fmt.Errorf("blob: trust csv row %d: bad value %q: %w", i, row[2], err)
		}
		entries = append(entries, trust.TrustEntry{From: row[0], To: row[1], Value: float32(v)})
	}
	return entries, nil
}

// EncodeSeedCSV writes a seed/input-score CSV (header `id,value`).
func EncodeSeedCSV(entries []trust.ScoreEntry) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(SeedHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.ID, formatFloat(e.Value)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// DecodeSeedCSV parses a seed/input-score CSV.
func DecodeSeedCSV(data []byte) ([]trust.ScoreEntry, error) {
	rows, err := readRows(data, 2)
	if err != nil {
		return nil, fmt.Errorf("blob: decode seed csv: %w", err)
	}
	entries := make([]trust.ScoreEntry, 0, len(rows))
	for i, row := range rows {
		v, err := strconv.ParseFloat(row[1], 32)
		if err != nil {
			return nil, fmt.Errorf("blob: seed csv row %d: bad value %q: %w", i, row[1], err)
		}
		entries = append(entries, trust.ScoreEntry{ID: row[0], Value: float32(v)})
	}
	return entries, nil
}

// EncodeScoresCSV writes an output-scores CSV (header `i,v`). Callers
// must already have the entries in ascending dense-index order — this
// function does not sort.
func EncodeScoresCSV(entries []trust.ScoreEntry) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(ScoresHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.ID, formatFloat(e.Value)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// DecodeScoresCSV parses an output-scores CSV, preserving row order (the
// row index is the position used by §4.I's scores-tree construction).
func DecodeScoresCSV(data []byte) ([]trust.ScoreEntry, error) {
	rows, err := readRows(data, 2)
	if err != nil {
		return nil, fmt.Errorf("blob: decode scores csv: %w", err)
	}
	entries := make([]trust.ScoreEntry, 0, len(rows))
	for i, row := range rows {
		v, err := strconv.ParseFloat(row[1], 32)
		if err != nil {
			return nil, fmt.Errorf("blob: scores csv row %d: bad value %q: %w", i, row[1], err)
		}
		entries = append(entries, trust.ScoreEntry{ID: row[0], Value: float32(v)})
	}
	return entries, nil
}

// readRows reads a CSV, requires a header row and strips it, and checks
// every row (header included) has exactly wantCols fields. The header's
// column names are not compared against the expected literal.
func readRows(data []byte, wantCols int) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = wantCols
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("empty csv: missing header row")
	}
	return all[1:], nil
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
