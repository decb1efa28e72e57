package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/records"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/services"
	"go.uber.org/zap"
)

// Upload sends the file at path to the bucket under its sanitized name,
// signs a download URL for it and records the URL. The record is only
// written once both the upload and the signature succeeded.
func (a *App) Upload(ctx context.Context, path string) (models.Record, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Record{}, fmt.Errorf("%w: file %s does not exist", apperr.ErrFileNotFound, path)
	}
	if err != nil {
		return models.Record{}, err
	}
	if info.IsDir() {
		return models.Record{}, fmt.Errorf("%w: %s is a directory", apperr.ErrFileNotFound, path)
	}

	store, err := a.deps.Store.Load(ctx)
	if err != nil {
		return models.Record{}, err
	}

	if a.deps.Scanner != nil {
		if err := a.deps.Scanner.ScanFile(path); err != nil {
			return models.Record{}, err
		}
	}

	original := filepath.Base(path)
	key := services.SanitizeFilename(path)
	fmt.Fprintf(a.deps.Out, "\nUploading %s...\n", original)
	if err := a.deps.Objects.UploadFile(ctx, path, key); err != nil {
		return models.Record{}, err
	}
	fmt.Fprintf(a.deps.Out, "File uploaded as: %s\n", key)

	rec, err := a.signAndRecord(ctx, store, key)
	if err != nil {
		return models.Record{}, err
	}

	fmt.Fprintln(a.deps.Out, "\nUpload successful!")
	fmt.Fprintf(a.deps.Out, "Signed URL (valid for %d days):\n%s\n", a.cfg.ValidityDays, rec.URL)
	if a.copyToClipboard(rec.URL) {
		fmt.Fprintln(a.deps.Out, "\nURL copied to clipboard!")
	} else {
		fmt.Fprintln(a.deps.Out, "\nCould not copy to clipboard. Please copy the URL manually.")
	}
	if _, days, err := records.CheckStored(rec.Expiration, a.deps.Now()); err == nil {
		fmt.Fprintf(a.deps.Out, "\nStatus: URL valid for %d more days\n", days)
	}
	return rec, nil
}

// signAndRecord signs key, stores the URL as its current record and saves
// the store.
func (a *App) signAndRecord(ctx context.Context, store *models.Records, key string) (models.Record, error) {
	now := a.deps.Now()
	expiration := now.Add(a.cfg.Validity())

	url, err := a.deps.Objects.SignURL(ctx, key, a.cfg.Validity())
	if err != nil {
		return models.Record{}, err
	}

	rec := records.Upsert(store, key, url, expiration, now)
	if err := a.deps.Store.Save(ctx, store); err != nil {
		return models.Record{}, err
	}

	a.deps.Events.Publish(services.SubjectSigned, services.RecordEvent{
		Action:     services.SubjectSigned,
		Keys:       []string{key},
		URL:        rec.URL,
		Expiration: rec.Expiration,
		OccurredAt: now,
	})
	a.log.Info("url recorded", zap.String("key", key), zap.Int("history", len(rec.History)))
	return rec, nil
}
