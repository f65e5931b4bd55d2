// Package scripttag swaps an HTML page's inline script for an external reference.
package scripttag

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/andreiashu/citymap/internal/store"
)

// DefaultFile is the page rewritten when no file is given.
const DefaultFile = "main.html"

// ExternalTag replaces the inline script block.
const ExternalTag = `<script src="js/main.js"></script>`

// inlineScript matches "<script>" through the nearest following "</script>",
// across line breaks. Tags with attributes (including ExternalTag) do not match.
var inlineScript = regexp.MustCompile(`(?s)<script>.*?</script>`)

var (
	// ErrNotUTF8 is returned when the target file is not valid UTF-8 text.
	ErrNotUTF8 = errors.New("file is not valid UTF-8")
	// ErrNoScriptBlock is returned in strict mode when nothing was replaced.
	ErrNoScriptBlock = errors.New("no inline script block found")
)

// Replace substitutes the first inline script block of text with ExternalTag.
// It reports whether a block was found; text without one is returned unchanged.
func Replace(text string) (string, bool) {
	loc := inlineScript.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return text[:loc[0]] + ExternalTag + text[loc[1]:], true
}

// Result describes a completed ReplaceFile call.
type Result struct {
	Path     string
	Replaced bool // false when the file had no inline script block
}

// Config holds ReplaceFile settings.
type Config struct {
	Strict bool // fail with ErrNoScriptBlock when nothing was replaced
}

// Option is a functional option for ReplaceFile.
type Option func(*Config)

// WithStrict makes ReplaceFile return ErrNoScriptBlock when the file had no
// inline script block. The file is still rewritten.
func WithStrict(strict bool) Option {
	return func(c *Config) {
		c.Strict = strict
	}
}

// ReplaceFile rewrites the file at path with its first inline script block
// replaced. The file is written back even when no block was found.
func ReplaceFile(ctx context.Context, path string, opts ...Option) (Result, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	data, err := store.Read(ctx, path)
	if err != nil {
		return Result{}, err
	}
	if !utf8.Valid(data) {
		return Result{}, fmt.Errorf("%s: %w", path, ErrNotUTF8)
	}

	updated, replaced := Replace(string(data))
	if err := store.Write(ctx, path, []byte(updated)); err != nil {
		return Result{}, err
	}

	res := Result{Path: path, Replaced: replaced}
	if !replaced && cfg.Strict {
		return res, fmt.Errorf("%s: %w", path, ErrNoScriptBlock)
	}
	return res, nil
}
