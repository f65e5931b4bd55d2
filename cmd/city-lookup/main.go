// Command city-lookup queries a map written by citymap.
//
// Usage:
//
//	go run ./cmd/city-lookup -m city_lat_long.json "Springfield, IL"
//	go run ./cmd/city-lookup -m city_lat_long.json --lat 39.78 --lng -89.65
//
// Each result is printed as key, latitude, longitude and geohash separated by tabs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/andreiashu/citymap"
	"github.com/andreiashu/citymap/internal/logging"
	"github.com/andreiashu/citymap/internal/store"
)

// Options defines CLI flags.
type Options struct {
	Map       string   `short:"m" long:"map" default:"city_lat_long.json" description:"City map produced by citymap"`
	Lat       *float64 `long:"lat" description:"Latitude for a nearest-city lookup (requires --lng)"`
	Lng       *float64 `long:"lng" description:"Longitude for a nearest-city lookup (requires --lat)"`
	Fuzzy     int      `long:"fuzzy" default:"2" description:"Maximum edit distance for suggestions (0 disables)"`
	Precision int      `long:"precision" default:"9" description:"Geohash precision (1-12)"`
	Args      struct {
		Queries []string `positional-arg-name:"query" description:"\"City, ST\" keys to look up"`
	} `positional-args:"yes"`
}

// maxSuggestions limits how many near matches are reported for an unknown query.
const maxSuggestions = 5

var (
	errNoQuery   = errors.New("nothing to look up: pass a query or --lat and --lng")
	errHalfPoint = errors.New("--lat and --lng must be given together")
	errNotFound  = errors.New("not found")
)

func parseOptions(args []string) (opts Options, ok bool, err error) {
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return opts, false, nil
		}
		return opts, false, err
	}
	return opts, true, nil
}

func formatMatch(m citymap.Match, precision int) string {
	return strings.Join([]string{
		m.Key,
		strconv.FormatFloat(m.Latitude, 'f', -1, 64),
		strconv.FormatFloat(m.Longitude, 'f', -1, 64),
		citymap.Geohash(m.Coordinates, precision),
	}, "\t")
}

func run(ctx context.Context, log zerolog.Logger, opts Options, stdout io.Writer) error {
	if (opts.Lat == nil) != (opts.Lng == nil) {
		return errHalfPoint
	}
	near := opts.Lat != nil
	if len(opts.Args.Queries) == 0 && !near {
		return errNoQuery
	}

	exists, err := store.Exists(ctx, opts.Map)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("city map %s does not exist; generate it with citymap first", opts.Map)
	}
	m, err := citymap.ReadMapping(ctx, opts.Map)
	if err != nil {
		return err
	}
	ix := citymap.NewIndex(m)
	log.Debug().Str("map", opts.Map).Int("keys", ix.Len()).Msg("city map loaded")

	var missing []string
	for _, q := range opts.Args.Queries {
		match, ok := ix.Lookup(q)
		if !ok {
			missing = append(missing, q)
			log.Warn().
				Str("query", q).
				Strs("suggestions", ix.Suggest(q, opts.Fuzzy, maxSuggestions)).
				Msg("city not found")
			continue
		}
		fmt.Fprintln(stdout, formatMatch(match, opts.Precision))
	}

	if near {
		lat, lng := *opts.Lat, *opts.Lng
		match, ok := ix.Nearest(lat, lng)
		if !ok {
			missing = append(missing, fmt.Sprintf("%g,%g", lat, lng))
			log.Warn().Float64("lat", lat).Float64("lng", lng).Msg("no city within range")
		} else {
			log.Debug().Float64("distance_km", match.DistanceKm).Str("key", match.Key).Msg("nearest city")
			fmt.Fprintln(stdout, formatMatch(match, opts.Precision))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errNotFound, strings.Join(missing, "; "))
	}
	return nil
}

func main() {
	opts, ok, err := parseOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if !ok {
		return
	}

	log := logging.Stderr()
	if err := run(context.Background(), log, opts, os.Stdout); err != nil {
		log.Error().Err(err).Msg("lookup failed")
		os.Exit(1)
	}
}
