package app

import (
	"context"
	"fmt"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/records"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/services"
	"go.uber.org/zap"
)

// existenceChecker is implemented by stores that can tell an absent store
// apart from an empty one.
type existenceChecker interface {
	Exists() bool
}

// Sweep removes every expired record, saves the store and prints what was
// kept and what was removed.
func (a *App) Sweep(ctx context.Context) (records.SweepResult, error) {
	if !a.storeExists(ctx) {
		fmt.Fprintln(a.deps.Out, "No URL records found")
		return records.SweepResult{}, nil
	}
	store, err := a.deps.Store.Load(ctx)
	if err != nil {
		return records.SweepResult{}, err
	}

	now := a.deps.Now()
	res, err := records.Sweep(store, now)
	if err != nil {
		return records.SweepResult{}, err
	}
	if err := a.deps.Store.Save(ctx, store); err != nil {
		return records.SweepResult{}, err
	}
	if len(res.Removed) > 0 {
		a.deps.Events.Publish(services.SubjectSwept, services.RecordEvent{
			Action:     services.SubjectSwept,
			Keys:       res.Removed,
			OccurredAt: now,
		})
	}
	a.log.Info("sweep finished", zap.Int("retained", len(res.Retained)), zap.Int("removed", len(res.Removed)))

	fmt.Fprintln(a.deps.Out, "\nURL Status Report:")
	fmt.Fprintln(a.deps.Out, "-----------------")
	if len(res.Retained) > 0 {
		fmt.Fprintln(a.deps.Out, "\nValid URLs:")
		for _, r := range res.Retained {
			fmt.Fprintf(a.deps.Out, "- %s: %d days remaining\n", r.Key, r.DaysLeft)
		}
	}
	if len(res.Removed) > 0 {
		fmt.Fprintln(a.deps.Out, "\nExpired URLs (removed):")
		for _, key := range res.Removed {
			fmt.Fprintf(a.deps.Out, "- %s\n", key)
		}
	}
	return res, nil
}

func (a *App) storeExists(ctx context.Context) bool {
	if c, ok := a.deps.Store.(existenceChecker); ok {
		return c.Exists()
	}
	store, err := a.deps.Store.Load(ctx)
	return err != nil || store.Len() > 0
}
