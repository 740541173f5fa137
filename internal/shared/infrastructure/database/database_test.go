package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDriver(t *testing.T) {
	tests := []struct {
		input    string
		expected Driver
		wantErr  bool
	}{
		{"", DriverSQLite, false},
		{"sqlite", DriverSQLite, false},
		{"MEMORY", DriverMemory, false},
		{"postgresql", DriverPostgres, false},
		{"redis", DriverRedis, false},
		{"mysql", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseDriver(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestDriver_Transactional(t *testing.T) {
	assert.True(t, DriverSQLite.Transactional())
	assert.True(t, DriverPostgres.Transactional())
	assert.False(t, DriverMemory.Transactional())
	assert.False(t, DriverRedis.Transactional())
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE probe (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestOpenWithoutURL(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "", 0)
	assert.ErrorIs(t, err, ErrMissingURL)
	_, err = OpenRedis(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingURL)
}
