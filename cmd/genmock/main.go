// Command genmock reads a CSV of raw positions (id,source,longitude,latitude,
// altitude) and generates the JSON fixtures used by downstream consumers:
// the raw source records and the normalized sink records. It runs the real
// domain conversion so the fixtures match pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/positions.csv \
//	  -raw-out data/mock/positions_raw.json \
//	  -normalized-out data/mock/positions_normalized.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/geo-position-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV file of raw positions")
	rawOut := flag.String("raw-out", "", "output path for raw source records")
	normOut := flag.String("normalized-out", "", "output path for normalized sink records")
	flag.Parse()

	if *csvPath == "" || *rawOut == "" || *normOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -raw-out, -normalized-out")
	}

	// Fixed clock for reproducible processed_at timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	records, err := readRecords(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}

	normalized := make([]domain.NormalizedPosition, 0, len(records))
	skipped := 0
	for _, rec := range records {
		pos, err := convert(rec)
		if err != nil {
			log.Printf("skip %s: %v", rec.ID, err)
			skipped++
			continue
		}
		normalized = append(normalized, pos)
	}
	log.Printf("records: %d converted, %d skipped", len(normalized), skipped)

	if err := writeJSON(*rawOut, records); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*normOut, normalized); err != nil {
		return fmt.Errorf("writing normalized fixture: %w", err)
	}
	log.Printf("wrote normalized fixture: %s", *normOut)
	return nil
}

func readRecords(path string) ([]domain.PositionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}

	records := make([]domain.PositionRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := domain.PositionRecord{
			ID:     get(row, colIdx, "id"),
			Source: get(row, colIdx, "source"),
		}
		for _, col := range []string{"longitude", "latitude", "altitude"} {
			s := get(row, colIdx, col)
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d %s: %w", n+2, col, err)
			}
			rec.Coordinates = append(rec.Coordinates, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func convert(rec domain.PositionRecord) (domain.NormalizedPosition, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return domain.NormalizedPosition{}, fmt.Errorf("marshal record: %w", err)
	}
	pos, err := domain.ParseRawEvent(domain.RawEvent{Value: payload}, domain.DefaultNormalizer)
	if err != nil {
		return domain.NormalizedPosition{}, err
	}
	return domain.StampProcessed(pos), nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
