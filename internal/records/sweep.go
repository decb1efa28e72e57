package records

import (
	"fmt"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
)

// Retained is a record that survived a sweep.
type Retained struct {
	Key      string
	DaysLeft int
}

// SweepResult lists what a sweep kept and what it removed, both in the
// store's order.
type SweepResult struct {
	Retained []Retained
	Removed  []string
}

// Sweep removes every record whose current URL expired before now.
// Nothing is removed if any record carries an unreadable expiration.
func Sweep(store *models.Records, now time.Time) (SweepResult, error) {
	var res SweepResult
	var firstErr error
	store.Each(func(key string, rec models.Record) {
		status, days, err := CheckStored(rec.Expiration, now)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("record %s: %w", key, err)
			}
			return
		}
		if status == Expired {
			res.Removed = append(res.Removed, key)
			return
		}
		res.Retained = append(res.Retained, Retained{Key: key, DaysLeft: days})
	})
	if firstErr != nil {
		return SweepResult{}, firstErr
	}

	for _, key := range res.Removed {
		store.Delete(key)
	}
	return res, nil
}
