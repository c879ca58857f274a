package configcache

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/meltforce/practiceboard/internal/configsrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	_, ok, err := c.Get(ctx, "file:menus.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "file:menus.json", []byte(`{"menus":[1]}`)))
	require.NoError(t, c.Put(ctx, "file:menus.json", []byte(`{"menus":[1]}`)))
	require.NoError(t, c.Put(ctx, "file:menus.json", []byte(`{"menus":[2]}`)))

	body, ok, err := c.Get(ctx, "file:menus.json")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"menus":[2]}`, string(body))
}

// TestWrapFallsBackToCache verifies a failing source and a rejected
// document are both served from the last good copy.
func TestWrapFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	var body []byte
	var fail bool
	src := configsrc.Func{Label: "https://example.com/menus.json", Fn: func(context.Context) ([]byte, error) {
		if fail {
			return nil, errors.New("network down")
		}
		return body, nil
	}}
	validate := func(b []byte) error {
		if string(b) == "garbage" {
			return errors.New("invalid")
		}
		return nil
	}
	wrapped := c.Wrap(src, validate)
	assert.Equal(t, src.Name(), wrapped.Name())

	// Nothing cached yet: the fetch error surfaces.
	fail = true
	_, err := wrapped.Fetch(ctx)
	require.Error(t, err)

	fail = false
	body = []byte(`{"menus":[]}`)
	got, err := wrapped.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"menus":[]}`, string(got))

	// Invalid documents fall back to the cached copy and never replace it.
	body = []byte("garbage")
	got, err = wrapped.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"menus":[]}`, string(got))

	fail = true
	got, err = wrapped.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"menus":[]}`, string(got))
}

func TestWrapRejectsInvalidWithoutCache(t *testing.T) {
	c := openTestCache(t)
	src := configsrc.Func{Label: "file:menus.json", Fn: func(context.Context) ([]byte, error) {
		return []byte("<html>502 Bad Gateway</html>"), nil
	}}
	wrapped := c.Wrap(src, func([]byte) error { return errors.New("invalid") })

	_, err := wrapped.Fetch(context.Background())
	require.Error(t, err)

	_, ok, err := c.Get(context.Background(), "file:menus.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashBytes(nil))
}
