// Command replace-script-tag replaces the first inline <script> block of
// main.html with <script src="js/main.js"></script>.
//
// Usage:
//
//	go run ./cmd/replace-script-tag
//
// The file is rewritten even when it has no inline script block, and the
// confirmation is printed either way; pass --strict to fail in that case.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/andreiashu/citymap/internal/logging"
	"github.com/andreiashu/citymap/scripttag"
)

// Options defines CLI flags.
type Options struct {
	File   string `short:"f" long:"file" default:"main.html" description:"HTML file to rewrite in place"`
	Strict bool   `long:"strict" description:"Exit non-zero when no inline script block was found"`
}

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

func run(ctx context.Context, log zerolog.Logger, opts Options, stdout io.Writer) error {
	res, err := scripttag.ReplaceFile(ctx, opts.File, scripttag.WithStrict(opts.Strict))
	if err != nil {
		return err
	}
	if !res.Replaced {
		log.Debug().Str("file", res.Path).Msg("no inline script block, file left unchanged")
	}
	fmt.Fprintf(stdout, "Replaced inline script tag in %s\n", res.Path)
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
		log.Error().Err(err).Msg("replace failed")
		os.Exit(1)
	}
}
