package db

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"001_patient_card.sql": "CREATE TABLE patient (id BIGINT PRIMARY KEY);",
		"002_disease.sql":      "CREATE TABLE disease (id BIGINT PRIMARY KEY);",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_patient_card.sql", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE patient (id BIGINT PRIMARY KEY);", migrations[0].SQL)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestLoadMigrations_SortOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"010_tables.sql": {Data: []byte("SELECT 10;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"005_middle.sql": {Data: []byte("SELECT 5;")},
	}

	migrations, err := NewMigratorFS(nil, fsys).LoadMigrations()
	require.NoError(t, err)

	var versions []int
	for _, m := range migrations {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []int{1, 2, 5, 10}, versions)
}

func TestLoadMigrations_SkipsInvalidNames(t *testing.T) {
	fsys := fstest.MapFS{
		"001_valid.sql":      {Data: []byte("SELECT 1;")},
		"readme.sql":         {Data: []byte("-- no version prefix")},
		"notes.txt":          {Data: []byte("not sql")},
		"abc_invalid.sql":    {Data: []byte("-- non-numeric prefix")},
		"002_also_valid.sql": {Data: []byte("SELECT 2;")},
		"sub/003_nested.sql": {Data: []byte("SELECT 3;")},
	}

	migrations, err := NewMigratorFS(nil, fsys).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql":  {Data: []byte("SELECT 1;")},
		"0001_b.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := NewMigratorFS(nil, fsys).LoadMigrations()
	assert.ErrorContains(t, err, "duplicate migration version 1")
}

func TestLoadMigrations_NonExistentDir(t *testing.T) {
	_, err := NewMigrator(nil, "/nonexistent/path/that/does/not/exist").LoadMigrations()
	assert.Error(t, err)
}

func TestLoadMigrations_RepositoryMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil, filepath.Join("..", "..", "..", "migrations")).LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "oms_number")
}

func TestPendingAndStatus(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "001_core.sql"},
		{Version: 2, Name: "002_more.sql"},
		{Version: 3, Name: "003_last.sql"},
	}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	applied := map[int]time.Time{1: at}

	pending := Pending(migrations, applied)
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].Version)
	assert.Equal(t, 3, pending[1].Version)

	statuses := BuildStatus(migrations, applied)
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Applied)
	require.NotNil(t, statuses[0].AppliedAt)
	assert.Equal(t, at, *statuses[0].AppliedAt)
	assert.False(t, statuses[1].Applied)
	assert.Nil(t, statuses[1].AppliedAt)
	assert.Equal(t, "003_last.sql", statuses[2].Name)
}
