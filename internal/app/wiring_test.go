package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"fithub/internal/config"
	"fithub/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	for _, tc := range []struct {
		kind string
		want any
	}{
		{config.StoreMemory, &storage.MemoryStore{}},
		{config.StoreFile, &storage.FileStore{}},
		{config.StoreSQLite, &storage.SQLiteStore{}},
	} {
		t.Run(tc.kind, func(t *testing.T) {
			cfg := &config.Config{
				StoreKind:    tc.kind,
				StoreDir:     filepath.Join(dir, "store"),
				DatabasePath: filepath.Join(dir, "db", "fithub.db"),
			}
			store, closeFn, err := OpenStore(cfg)
			require.NoError(t, err)
			defer closeFn()

			assert.IsType(t, tc.want, store)
			require.NoError(t, store.Set(context.Background(), "k", "v"))
		})
	}

	assert.Equal(t, filepath.Join(dir, "store"), DataPath(&config.Config{StoreKind: config.StoreFile, StoreDir: filepath.Join(dir, "store")}))
	assert.Equal(t, "data", DataPath(&config.Config{StoreKind: config.StoreSQLite, DatabasePath: "data/fithub.db"}))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "meal_type", "lunch")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"meal_type":"lunch"`)

	_, err = NewLogger(&buf, "loud", "json")
	assert.Error(t, err)
	_, err = NewLogger(&buf, "info", "xml")
	assert.Error(t, err)
}
