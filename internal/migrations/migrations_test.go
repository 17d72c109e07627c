package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreGooseFiles(t *testing.T) {
	entries, err := fs.ReadDir(FS(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		data, err := fs.ReadFile(FS(), e.Name())
		require.NoError(t, err)
		body := string(data)
		assert.True(t, strings.HasSuffix(e.Name(), ".sql"), e.Name())
		assert.Contains(t, body, "-- +goose Up", e.Name())
		assert.Contains(t, body, "-- +goose Down", e.Name())
	}
}
