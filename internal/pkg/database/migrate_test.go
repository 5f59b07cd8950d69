package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortsAndSkipsNonSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_index.sql": {Data: []byte("CREATE INDEX a ON b (c);")},
		"migrations/0001_init.sql":  {Data: []byte("CREATE TABLE b (c INT);")},
		"migrations/README.md":      {Data: []byte("notes")},
	}

	migrations, err := loadMigrations(fsys, "migrations")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_init", migrations[0].Version)
	assert.Equal(t, "CREATE TABLE b (c INT);", migrations[0].SQL)
	assert.Equal(t, "0002_index", migrations[1].Version)
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	_, err := loadMigrations(fstest.MapFS{}, "migrations")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := loadMigrations(embeddedMigrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_init", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "uk_payroll_employee_period")
	assert.Contains(t, migrations[0].SQL, "ON DELETE RESTRICT")
	assert.NotContains(t, migrations[0].SQL, "CASCADE")
}
