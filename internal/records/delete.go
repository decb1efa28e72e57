package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
)

// ParseIndices parses a comma separated list of 1-based listing numbers.
func ParseIndices(input string) ([]int, error) {
	parts := strings.Split(input, ",")
	indices := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", apperr.ErrUserInput, strings.TrimSpace(p))
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// KeyAt returns the key shown at 1-based position index.
func KeyAt(store *models.Records, index int) (string, bool) {
	keys := store.Keys()
	if index < 1 || index > len(keys) {
		return "", false
	}
	return keys[index-1], true
}

// DeleteIndices removes the records shown at the given 1-based positions.
// Positions are resolved against the listing before anything is deleted;
// out of range and repeated positions are ignored. Deleted keys are
// returned in listing order.
func DeleteIndices(store *models.Records, indices []int) []string {
	keys := store.Keys()
	selected := make([]bool, len(keys))
	for _, idx := range indices {
		if idx >= 1 && idx <= len(keys) {
			selected[idx-1] = true
		}
	}

	var deleted []string
	for i, key := range keys {
		if selected[i] {
			store.Delete(key)
			deleted = append(deleted, key)
		}
	}
	return deleted
}

// DeleteAll empties the store and returns the number of removed records.
func DeleteAll(store *models.Records) int {
	keys := store.Keys()
	for _, key := range keys {
		store.Delete(key)
	}
	return len(keys)
}
