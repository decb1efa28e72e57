package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/manager"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/records"
)

// Show prints the active URL stored for key and copies it to the clipboard
// while it is still valid.
func (a *App) Show(ctx context.Context, key string) (models.Record, error) {
	store, err := a.deps.Store.Load(ctx)
	if err != nil {
		return models.Record{}, err
	}
	rec, ok := store.Get(key)
	if !ok {
		return models.Record{}, fmt.Errorf("%w: no active URL found for %s", apperr.ErrRecordNotFound, key)
	}

	status, days, err := records.CheckStored(rec.Expiration, a.deps.Now())
	if err != nil {
		return models.Record{}, fmt.Errorf("record %s: %w", key, err)
	}

	fmt.Fprintf(a.deps.Out, "\nActive URL for %s:\n", key)
	fmt.Fprintln(a.deps.Out, strings.Repeat("-", 80))
	fmt.Fprintf(a.deps.Out, "Status: %s\n", status)
	fmt.Fprintf(a.deps.Out, "Created: %s\n", rec.CreatedAt)
	if status == records.Valid {
		fmt.Fprintf(a.deps.Out, "Days remaining: %d\n", days)
	}
	fmt.Fprintf(a.deps.Out, "URL: %s\n", rec.URL)

	if status == records.Valid && a.copyToClipboard(rec.URL) {
		fmt.Fprintln(a.deps.Out, "\nURL has been copied to clipboard!")
	}
	return rec, nil
}

// Manage runs the interactive record manager.
func (a *App) Manage(ctx context.Context) error {
	m := manager.New(a.deps.Store, a.deps.In, a.deps.Out, a.log, manager.Options{
		Now:         a.deps.Now,
		ClearScreen: a.deps.ClearScreen,
		Events:      a.deps.Events,
	})
	return m.Run(ctx)
}
