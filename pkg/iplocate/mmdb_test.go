package iplocate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDatabase_Missing(t *testing.T) {
	_, err := OpenDatabase(filepath.Join(t.TempDir(), "GeoLite2-City.mmdb"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iplocate: open database")
}

func TestDatabase_LookupValidatesIP(t *testing.T) {
	d := &Database{}

	_, err := d.Lookup(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an ip")

	_, err = d.Lookup(context.Background(), "not-an-ip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ip")
}

func TestDatabase_LookupCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Database{}).Lookup(ctx, "81.2.69.142")
	assert.ErrorIs(t, err, context.Canceled)
}
