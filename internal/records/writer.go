package records

import (
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
)

// Upsert stores a freshly signed URL under key. When key already has a
// record, its current URL is moved to the end of the history, which is then
// cut back to the most recent models.MaxHistory entries.
func Upsert(store *models.Records, key, url string, expiration, now time.Time) models.Record {
	rec, exists := store.Get(key)
	history := []models.URLEntry{}
	if exists {
		history = append(history, rec.History...)
		history = append(history, rec.Current())
		if n := len(history); n > models.MaxHistory {
			history = history[n-models.MaxHistory:]
		}
	}

	rec = models.Record{
		URLEntry: models.URLEntry{
			URL:        url,
			CreatedAt:  models.FormatTimestamp(now),
			Expiration: models.FormatTimestamp(expiration),
		},
		History: history,
	}
	store.Set(key, rec)
	return rec
}
