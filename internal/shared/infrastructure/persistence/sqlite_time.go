package persistence

import (
	"database/sql"
	"time"
)

// SQLiteTimeLayout is fixed width so stored timestamps sort lexically.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatSQLiteTime renders t in UTC using SQLiteTimeLayout.
func FormatSQLiteTime(t time.Time) string {
	return t.UTC().Format(SQLiteTimeLayout)
}

// NullSQLiteTime renders an optional timestamp.
func NullSQLiteTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatSQLiteTime(*t), Valid: true}
}

// ParseSQLiteTime parses a timestamp written by FormatSQLiteTime. RFC 3339
// values are accepted as well.
func ParseSQLiteTime(value string) (time.Time, error) {
	t, err := time.Parse(SQLiteTimeLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}

// ParseNullSQLiteTime parses an optional timestamp.
func ParseNullSQLiteTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := ParseSQLiteTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
