package database

import (
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "vtour.db"),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Ping(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}
}
