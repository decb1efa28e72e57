package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecords = `{
  "report.pdf": {
    "url": "https://storage.googleapis.com/bucket/report.pdf?X-Amz-Algorithm=AWS4-HMAC-SHA256&X-Amz-Expires=604800",
    "created_at": "2024-01-03T09:15:00.123456",
    "expiration": "2024-01-10T09:15:00.123456",
    "history": [
      {
        "url": "https://storage.googleapis.com/bucket/report.pdf?v=1",
        "created_at": "2024-01-01T00:00:00",
        "expiration": "2024-01-08T00:00:00"
      }
    ]
  },
  "a.txt": {
    "url": "u1",
    "created_at": "2024-01-01T00:00:00",
    "expiration": "2024-01-08T00:00:00",
    "history": []
  }
}`

func TestLocalStorageLoadMissingFile(t *testing.T) {
	s := NewLocalStorage(filepath.Join(t.TempDir(), "signed_urls.json"))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, records.Len())
	assert.False(t, s.Exists())
}

func TestLocalStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signed_urls.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0o644))
	s := NewLocalStorage(path)
	ctx := context.Background()

	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf", "a.txt"}, records.Keys())

	require.NoError(t, s.Save(ctx, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords, string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "signed_urls.json")
	s := NewLocalStorage(path)
	ctx := context.Background()

	records := models.NewRecords()
	records.Set("a.txt", models.Record{URLEntry: models.URLEntry{URL: "u1", CreatedAt: "c", Expiration: "e"}})
	require.NoError(t, s.Save(ctx, records))
	assert.True(t, s.Exists())

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	rec, ok := loaded.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "u1", rec.URL)
	assert.Empty(t, rec.History)
}

func TestLocalStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signed_urls.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a.txt": {"url": `), 0o644))

	_, err := NewLocalStorage(path).Load(context.Background())
	assert.ErrorContains(t, err, "failed to parse records file")
}
