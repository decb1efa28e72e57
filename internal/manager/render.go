package manager

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/records"
	"github.com/fatih/color"
)

var (
	validColor   = color.New(color.FgGreen)
	expiredColor = color.New(color.FgRed)
)

// statusLabel returns the status text, the days left and the colour to
// print the status in. Unreadable timestamps are shown as INVALID.
func statusLabel(expiration string, now time.Time) (string, string, *color.Color) {
	status, days, err := records.CheckStored(expiration, now)
	if err != nil {
		return "INVALID", "-", expiredColor
	}
	if status == records.Expired {
		return status.String(), fmt.Sprint(days), expiredColor
	}
	return status.String(), fmt.Sprint(days), validColor
}

// RenderList prints every record with its listing number. It returns false
// when there is nothing to show.
func RenderList(w io.Writer, store *models.Records, now time.Time) bool {
	if store.Len() == 0 {
		fmt.Fprintln(w, "\nNo URLs found in the records.")
		return false
	}

	fmt.Fprintln(w, "\nStored URLs:")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	fmt.Fprintf(w, "%-6s %-8s %-10s %-30s %-10s\n", "Index", "Status", "Days Left", "Filename", "Previous URLs")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	idx := 0
	store.Each(func(key string, rec models.Record) {
		idx++
		status, days, c := statusLabel(rec.Expiration, now)
		fmt.Fprintf(w, "%-6d %s %-10s %-30s %d previous\n", idx, c.Sprintf("%-8s", status), days, key, len(rec.History))
	})
	return true
}

// RenderHistory prints the current URL of key followed by its previous
// URLs, newest first.
func RenderHistory(w io.Writer, key string, rec models.Record, now time.Time) {
	fmt.Fprintf(w, "\nURL History for %s:\n", key)
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintln(w, "Current URL:")
	status, days, c := statusLabel(rec.Expiration, now)
	fmt.Fprintf(w, "Status: %s (Days left: %s)\n", c.Sprint(status), days)
	fmt.Fprintf(w, "Created: %s\n", rec.CreatedAt)
	fmt.Fprintf(w, "URL: %s\n", rec.URL)

	if len(rec.History) == 0 {
		fmt.Fprintln(w, "\nNo previous URLs")
		return
	}

	fmt.Fprintln(w, "\nPrevious URLs:")
	for i := len(rec.History) - 1; i >= 0; i-- {
		old := rec.History[i]
		status, _, c := statusLabel(old.Expiration, now)
		fmt.Fprintf(w, "\n%d. Status: %s\n", len(rec.History)-i, c.Sprint(status))
		fmt.Fprintf(w, "   Created: %s\n", old.CreatedAt)
		fmt.Fprintf(w, "   URL: %s\n", old.URL)
	}
}
