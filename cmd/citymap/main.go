// Command citymap extracts a city -> latitude/longitude map from a CSV file.
//
// Usage:
//
//	go run ./cmd/citymap uscities.csv -o city_lat_long.json
//
// The input is the simplemaps US cities table (https://simplemaps.com/data/us-cities)
// or any CSV whose header names the city, state_id, lat and lng columns.
// The output is a JSON object keyed by "<city>, <state_id>".
package main

import (
	"context"
	"errors"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/andreiashu/citymap"
	"github.com/andreiashu/citymap/internal/logging"
)

// Options defines CLI flags.
type Options struct {
	Output string `short:"o" long:"output" default:"city_lat_long.json" description:"Output JSON file path"`
	Args   struct {
		InputCSV string `positional-arg-name:"input_csv" description:"Path to the CSV file"`
	} `positional-args:"yes" required:"yes"`
}

// parseOptions parses args; ok is false when help was requested.
func parseOptions(args []string) (opts Options, ok bool, err error) {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Extract city lat/lng mapping from CSV."
	if _, err := parser.ParseArgs(args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return opts, false, nil
		}
		return opts, false, err
	}
	return opts, true, nil
}

func run(ctx context.Context, log zerolog.Logger, opts Options) error {
	sum, err := citymap.Convert(ctx, opts.Args.InputCSV, citymap.WithOutput(opts.Output))
	if err != nil {
		return err
	}
	log.Info().
		Str("input", opts.Args.InputCSV).
		Str("output", sum.Output).
		Int("rows", sum.Rows).
		Int("keys", sum.Keys).
		Int("overwritten", sum.Overwrites).
		Msg("city map written")
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
	if err := run(context.Background(), log, opts); err != nil {
		log.Error().Err(err).Msg("conversion failed")
		os.Exit(1)
	}
}
