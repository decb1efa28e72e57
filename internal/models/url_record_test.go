package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsKeepInsertionOrder(t *testing.T) {
	data := `{"b.txt":{"url":"u2","created_at":"2024-01-02T00:00:00","expiration":"2024-01-09T00:00:00","history":[]},` +
		`"a.txt":{"url":"u1","created_at":"2024-01-01T00:00:00","expiration":"2024-01-08T00:00:00","history":[]},` +
		`"c.txt":{"url":"u3","created_at":"2024-01-03T00:00:00","expiration":"2024-01-10T00:00:00","history":[]}}`

	records := NewRecords()
	require.NoError(t, json.Unmarshal([]byte(data), records))
	assert.Equal(t, []string{"b.txt", "a.txt", "c.txt"}, records.Keys())

	// Replacing a value keeps its position.
	rec, ok := records.Get("a.txt")
	require.True(t, ok)
	rec.URL = "u1b"
	records.Set("a.txt", rec)
	assert.Equal(t, []string{"b.txt", "a.txt", "c.txt"}, records.Keys())

	out, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"b.txt":{"url":"u2","created_at":"2024-01-02T00:00:00","expiration":"2024-01-09T00:00:00","history":[]},
		"a.txt":{"url":"u1b","created_at":"2024-01-01T00:00:00","expiration":"2024-01-08T00:00:00","history":[]},
		"c.txt":{"url":"u3","created_at":"2024-01-03T00:00:00","expiration":"2024-01-10T00:00:00","history":[]}
	}`, string(out))
}

func TestRecordsMissingHistoryIsEmpty(t *testing.T) {
	records := NewRecords()
	require.NoError(t, json.Unmarshal([]byte(`{"a.txt":{"url":"u1","created_at":"x","expiration":"y"}}`), records))

	rec, ok := records.Get("a.txt")
	require.True(t, ok)
	assert.NotNil(t, rec.History)
	assert.Empty(t, rec.History)

	out, err := json.Marshal(records)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"history":[]`)
}

func TestRecordsRejectNonObjectValues(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "null record", data: `{"a.txt":null}`},
		{name: "string record", data: `{"a.txt":"https://x/a"}`},
		{name: "array record", data: `{"a.txt":[]}`},
		{name: "null after valid record", data: `{"b.txt":{"url":"u","created_at":"2024-01-01T00:00:00","expiration":"2024-01-08T00:00:00"},"a.txt":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := NewRecords()
			err := json.Unmarshal([]byte(tt.data), records)
			assert.ErrorContains(t, err, "record a.txt")
		})
	}
}

func TestRecordsMarshalDoesNotEscapeURLs(t *testing.T) {
	records := NewRecords()
	records.Set("a.txt", Record{URLEntry: URLEntry{URL: "https://host/a.txt?X-Amz-Date=1&X-Amz-Expires=604800"}})

	out, err := records.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), "X-Amz-Date=1&X-Amz-Expires=604800")
}

func TestRecordsCloneIsIndependent(t *testing.T) {
	records := NewRecords()
	records.Set("a.txt", Record{URLEntry: URLEntry{URL: "u1"}, History: []URLEntry{{URL: "u0"}}})

	clone := records.Clone()
	clone.Delete("a.txt")
	assert.Equal(t, 1, records.Len())
	assert.Equal(t, 0, clone.Len())
}

func TestTimestamps(t *testing.T) {
	t.Run("format omits zero microseconds", func(t *testing.T) {
		ts := time.Date(2024, 1, 1, 12, 30, 0, 0, time.Local)
		assert.Equal(t, "2024-01-01T12:30:00", FormatTimestamp(ts))
	})

	t.Run("format keeps microseconds", func(t *testing.T) {
		ts := time.Date(2024, 1, 1, 12, 30, 0, 123456789, time.Local)
		assert.Equal(t, "2024-01-01T12:30:00.123456", FormatTimestamp(ts))
	})

	t.Run("parse naive", func(t *testing.T) {
		got, err := ParseTimestamp("2024-01-08T00:00:00.500000")
		require.NoError(t, err)
		assert.True(t, got.Equal(time.Date(2024, 1, 8, 0, 0, 0, 500000000, time.Local)))
	})

	t.Run("parse with offset", func(t *testing.T) {
		got, err := ParseTimestamp("2024-01-08T00:00:00+02:00")
		require.NoError(t, err)
		assert.True(t, got.Equal(time.Date(2024, 1, 7, 22, 0, 0, 0, time.UTC)))
	})

	t.Run("round trip", func(t *testing.T) {
		ts := time.Date(2024, 3, 5, 7, 9, 11, 42000, time.Local)
		got, err := ParseTimestamp(FormatTimestamp(ts))
		require.NoError(t, err)
		assert.True(t, got.Equal(ts))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseTimestamp("next tuesday")
		assert.Error(t, err)
	})
}
