// Package citymap converts city coordinate tables into a JSON lookup map
// keyed by "<city>, <state_id>" and answers lookups against such a map.
package citymap

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/andreiashu/citymap/internal/store"
)

// DefaultOutput is the file the converter writes when no output is given.
const DefaultOutput = "city_lat_long.json"

// Column names required in the CSV header (simplemaps uscities layout).
const (
	ColumnCity    = "city"
	ColumnStateID = "state_id"
	ColumnLat     = "lat"
	ColumnLng     = "lng"
)

var requiredColumns = []string{ColumnCity, ColumnStateID, ColumnLat, ColumnLng}

var (
	// ErrMissingColumn is returned when the CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidCoordinate is returned when lat or lng is not a finite number.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// utf8BOM is stripped from the first header cell; spreadsheet exports often carry one.
const utf8BOM = "\ufeff"

// CityRecord is a single data row of the input table.
type CityRecord struct {
	City    string
	StateID string
	Lat     float64
	Lng     float64
}

// Key returns the derived lookup key of the record.
func (r CityRecord) Key() string {
	return Key(r.City, r.StateID)
}

// Coordinates returns the record's position.
func (r CityRecord) Coordinates() Coordinates {
	return Coordinates{Latitude: r.Lat, Longitude: r.Lng}
}

// Key joins a city name and a state code into a lookup key, e.g. "Austin, TX".
func Key(city, stateID string) string {
	return city + ", " + stateID
}

// Coordinates is the value stored for every key of a Mapping.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Mapping maps derived keys to coordinates.
type Mapping map[string]Coordinates

// Encode serializes the mapping as a compact JSON object. Keys are emitted in
// sorted order so identical mappings always produce identical bytes.
func (m Mapping) Encode() ([]byte, error) {
	if m == nil {
		m = Mapping{}
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]Coordinates(m)); err != nil {
		return nil, fmt.Errorf("encoding mapping: %w", err)
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}

// DecodeMapping parses a JSON object previously produced by Encode.
func DecodeMapping(data []byte) (Mapping, error) {
	m := Mapping{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding mapping: %w", err)
	}
	return m, nil
}

// Summary describes a completed conversion.
type Summary struct {
	Rows       int    // data rows read
	Keys       int    // distinct keys in the mapping
	Overwrites int    // rows whose key replaced an earlier row
	Output     string // where the mapping was written, empty for ParseCSV
}

// header locates the required columns in a CSV header row.
type header map[string]int

func parseHeader(row []string) (header, error) {
	h := make(header, len(row))
	for i, name := range row {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		// first occurrence wins, matching csv.DictReader's field lookup order
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}
	return h, nil
}

func (h header) record(row []string) (CityRecord, error) {
	lat, err := parseCoordinate(ColumnLat, row[h[ColumnLat]])
	if err != nil {
		return CityRecord{}, err
	}
	lng, err := parseCoordinate(ColumnLng, row[h[ColumnLng]])
	if err != nil {
		return CityRecord{}, err
	}
	return CityRecord{
		City:    row[h[ColumnCity]],
		StateID: row[h[ColumnStateID]],
		Lat:     lat,
		Lng:     lng,
	}, nil
}

func parseCoordinate(column, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidCoordinate, column, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q is not finite", ErrInvalidCoordinate, column, raw)
	}
	return v, nil
}

// ParseCSV reads a header row followed by data rows and builds the mapping.
// Rows are applied in file order, so a later duplicate key overwrites an
// earlier one. An input without any header yields an empty mapping. The first
// malformed row aborts the parse.
func ParseCSV(r io.Reader) (Mapping, Summary, error) {
	var sum Summary
	m := Mapping{}

	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return m, sum, nil
	}
	if err != nil {
		return nil, sum, fmt.Errorf("reading header: %w", err)
	}
	h, err := parseHeader(first)
	if err != nil {
		return nil, sum, fmt.Errorf("reading header: %w", err)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, sum, fmt.Errorf("reading row: %w", err)
		}
		rec, err := h.record(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, sum, fmt.Errorf("line %d: %w", line, err)
		}
		sum.Rows++
		key := rec.Key()
		if _, ok := m[key]; ok {
			sum.Overwrites++
		}
		m[key] = rec.Coordinates()
	}
	sum.Keys = len(m)
	return m, sum, nil
}

// Config holds converter settings.
type Config struct {
	Output string // output path or URL (default: DefaultOutput)
}

// Option is a functional option for Convert.
type Option func(*Config)

// WithOutput sets the output path. An empty path keeps the default.
func WithOutput(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.Output = path
		}
	}
}

func defaultConfig() *Config {
	return &Config{Output: DefaultOutput}
}

// Convert reads the CSV at input, builds the mapping and writes it as JSON.
//
// The mapping is fully built and encoded before anything is written, and the
// write replaces the output atomically, so a failed run leaves any previous
// output untouched.
//
// Example:
//
//	sum, err := citymap.Convert(ctx, "uscities.csv", citymap.WithOutput("cities.json"))
func Convert(ctx context.Context, input string, opts ...Option) (Summary, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	data, err := store.Read(ctx, input)
	if err != nil {
		return Summary{}, err
	}
	m, sum, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		return Summary{}, fmt.Errorf("parsing %s: %w", input, err)
	}
	out, err := m.Encode()
	if err != nil {
		return Summary{}, err
	}
	if err := store.Write(ctx, cfg.Output, out); err != nil {
		return Summary{}, err
	}
	sum.Output = cfg.Output
	return sum, nil
}

// ReadMapping loads a mapping written by Convert.
func ReadMapping(ctx context.Context, path string) (Mapping, error) {
	data, err := store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	m, err := DecodeMapping(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

// SortedKeys returns the keys of m in ascending order.
func (m Mapping) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
