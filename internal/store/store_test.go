package store

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	u, err := URL("mem://localhost/cities.json")
	require.NoError(t, err)
	assert.Equal(t, "mem://localhost/cities.json", u)

	u, err = URL("/tmp/cities.json")
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/cities.json", u)

	u, err = URL("cities.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file:///"), u)
	assert.True(t, strings.HasSuffix(u, "/cities.json"), u)
}

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "out.json")

	ok, err := Exists(ctx, p)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Write(ctx, p, []byte(`{"a":1}`)))

	ok, err = Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestWriteReplacesLongerContent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(p, []byte(strings.Repeat("x", 4096)), 0644))

	require.NoError(t, Write(ctx, p, []byte("short")))

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestReadMissing(t *testing.T) {
	_, err := Read(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestTempSiblingKeepsExtension(t *testing.T) {
	for _, name := range []string{"out.json", "city_lat_long.json", "a.b.json", "cities", "ab", "main.html", ".hidden"} {
		u := "file:///tmp/x/" + name
		tmp := tempSibling(u)
		assert.True(t, strings.HasPrefix(tmp, "file:///tmp/x/"), tmp)
		assert.Equal(t, path.Ext(name), path.Ext(tmp), "temp for %q is %q", name, tmp)
		assert.NotEqual(t, u, tmp)
	}
}

func TestWriteCreatesRegularFile(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"out.json", "city_lat_long.json", "a.b.json", "cities", "my file.json", "main.html"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			p := filepath.Join(dir, name)

			require.NoError(t, Write(ctx, p, []byte("first")))
			info, err := os.Stat(p)
			require.NoError(t, err)
			assert.True(t, info.Mode().IsRegular(), "%s is not a regular file", p)

			// Overwriting an existing file must replace it in place.
			require.NoError(t, Write(ctx, p, []byte("second")))
			got, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Equal(t, "second", string(got))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}
