package main

import (
	"os"
	"path/filepath"
	"testing"

	"yamdb/internal/config"
	"yamdb/internal/database"
	"yamdb/internal/importer"
	"yamdb/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunImportsIntoSqlite(t *testing.T) {
	dir := t.TempDir()
	for _, name := range importer.Files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("id\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "category.csv"), []byte("id,name,slug\n1,Films,films\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "titles.csv"), []byte("id,name,year,category\n1,Heat,1995,1\n"), 0o644))

	cfg := config.Config{DatabaseDriver: "sqlite", DatabaseDSN: filepath.Join(t.TempDir(), "yamdb.db")}
	require.NoError(t, run(cfg, dir, true))

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	require.NoError(t, err)
	title, err := repositories.NewGORMTitleRepository(db).GetByID("1")
	require.NoError(t, err)
	assert.Equal(t, "Heat", title.Name)
	require.NotNil(t, title.Category)
	assert.Equal(t, "films", title.Category.Slug)
}

func TestRunRejectsUnknownDriver(t *testing.T) {
	err := run(config.Config{DatabaseDriver: "oracle"}, t.TempDir(), true)
	assert.Error(t, err)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	flag := cmd.Flags().Lookup("dir")
	require.NotNil(t, flag)
	assert.Equal(t, "static/data", flag.DefValue)
}
