// Package records holds the lifecycle rules for signed URL records:
// expiration checks, rotation into history, sweeps and deletions.
package records

import (
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
)

type Status int

const (
	Valid Status = iota
	Expired
)

func (s Status) String() string {
	if s == Expired {
		return "EXPIRED"
	}
	return "VALID"
}

const day = 24 * time.Hour

// Check reports whether a URL expiring at expiration is still valid at now
// and how many whole days it has left. A URL is expired only strictly after
// its expiration; expired URLs report zero days.
func Check(expiration, now time.Time) (Status, int) {
	if now.After(expiration) {
		return Expired, 0
	}
	return Valid, int(expiration.Sub(now) / day)
}

// CheckStored is Check for a timestamp as it appears in the records file.
func CheckStored(expiration string, now time.Time) (Status, int, error) {
	t, err := models.ParseTimestamp(expiration)
	if err != nil {
		return Expired, 0, err
	}
	status, days := Check(t, now)
	return status, days, nil
}
