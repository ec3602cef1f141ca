package geocache

import (
	"context"
	"testing"

	"go-quickstart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openSQLite(t *testing.T) Cache {
	t.Helper()
	c, err := Open(context.Background(), config.GeocacheConfig{Driver: "sqlite", DSN: ":memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "1600 amphitheatre pkwy, mountain view", NormalizeAddress("  1600  Amphitheatre Pkwy,\tMountain View "))
	assert.Equal(t, "", NormalizeAddress("   "))
}

func TestSQLiteCache(t *testing.T) {
	c := openSQLite(t)
	ctx := context.Background()

	got, err := c.GetMany(ctx, []string{"Somewhere"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.PutMany(ctx, map[string]Entry{
		"MG Road, Bengaluru": {Lat: 12.975, Lng: 77.606, FormattedAddress: "MG Road, Bengaluru, Karnataka", PlaceID: "p1"},
		"Park Street":        {Lat: 22.55, Lng: 88.35},
	}))

	got, err = c.GetMany(ctx, []string{"mg road,  bengaluru", "MG Road, Bengaluru", "Unknown", ""})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Lat: 12.975, Lng: 77.606, FormattedAddress: "MG Road, Bengaluru, Karnataka", PlaceID: "p1"}, got["mg road, bengaluru"])

	// upsert replaces
	require.NoError(t, c.PutMany(ctx, map[string]Entry{"park street": {Lat: 1, Lng: 2, PlaceID: "p2"}}))
	got, err = c.GetMany(ctx, []string{"Park Street"})
	require.NoError(t, err)
	assert.Equal(t, Entry{Lat: 1, Lng: 2, PlaceID: "p2"}, got["park street"])
}

func TestPutManyRejectsEmptyKey(t *testing.T) {
	c := openSQLite(t)
	err := c.PutMany(context.Background(), map[string]Entry{"  ": {Lat: 1}})
	assert.ErrorContains(t, err, "empty address key")
}

func TestOpenDrivers(t *testing.T) {
	c, err := Open(context.Background(), config.GeocacheConfig{Driver: "none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, c)

	got, err := c.GetMany(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Open(context.Background(), config.GeocacheConfig{Driver: "mysql"}, nil)
	assert.ErrorContains(t, err, "unknown driver")
}
