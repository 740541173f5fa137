package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteTime(t *testing.T) {
	t.Run("round trips with nanoseconds", func(t *testing.T) {
		in := time.Date(2024, 5, 6, 9, 30, 0, 1234, time.FixedZone("CEST", 2*3600))
		out, err := ParseSQLiteTime(FormatSQLiteTime(in))
		require.NoError(t, err)
		assert.True(t, in.Equal(out))
		assert.Equal(t, time.UTC, out.Location())
	})

	t.Run("formatted values sort lexically", func(t *testing.T) {
		a := FormatSQLiteTime(time.Date(2024, 5, 6, 9, 0, 0, 900000000, time.UTC))
		b := FormatSQLiteTime(time.Date(2024, 5, 6, 9, 0, 1, 0, time.UTC))
		assert.Less(t, a, b)
	})

	t.Run("accepts rfc3339", func(t *testing.T) {
		out, err := ParseSQLiteTime("2024-05-06T09:00:00+02:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC), out)
	})

	t.Run("null values", func(t *testing.T) {
		assert.False(t, NullSQLiteTime(nil).Valid)
		parsed, err := ParseNullSQLiteTime(sql.NullString{})
		require.NoError(t, err)
		assert.Nil(t, parsed)
	})
}
