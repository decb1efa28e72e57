package storage

import (
	"context"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
)

// Storage is the record store. Every mutation is a Load, an in-memory
// change and a Save of the whole set; there are no partial updates.
type Storage interface {
	// Load returns all records. A store that does not exist yet is empty.
	Load(ctx context.Context) (*models.Records, error)
	// Save replaces the stored records with records.
	Save(ctx context.Context, records *models.Records) error
}
