package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
)

// SignExisting lets the user pick an object already in the bucket, signs a
// fresh URL for it and records the URL. It returns false when the user quit
// without choosing.
func (a *App) SignExisting(ctx context.Context) (models.Record, bool, error) {
	names, err := a.deps.Objects.ListObjects(ctx)
	if err != nil {
		return models.Record{}, false, err
	}
	if len(names) == 0 {
		return models.Record{}, false, fmt.Errorf("%w: no files found in bucket %s", apperr.ErrCollaborator, a.cfg.Storage.BucketName)
	}

	fmt.Fprintln(a.deps.Out, "\nFiles in bucket:")
	for i, name := range names {
		fmt.Fprintf(a.deps.Out, "%d) %s\n", i+1, name)
	}

	key, ok, err := SelectObject(bufio.NewReader(a.deps.In), a.deps.Out, names)
	if err != nil || !ok {
		return models.Record{}, false, err
	}

	store, err := a.deps.Store.Load(ctx)
	if err != nil {
		return models.Record{}, false, err
	}
	rec, err := a.signAndRecord(ctx, store, key)
	if err != nil {
		return models.Record{}, false, err
	}

	fmt.Fprintf(a.deps.Out, "\nSigned URL for %s (valid for %d days):\n%s\n", key, a.cfg.ValidityDays, rec.URL)
	if a.copyToClipboard(rec.URL) {
		fmt.Fprintln(a.deps.Out, "\nURL copied to clipboard!")
	} else {
		fmt.Fprintln(a.deps.Out, "\nCould not copy to clipboard. Please copy the URL manually.")
	}
	return rec, true, nil
}

// SelectObject prompts until the user enters a valid 1-based number from
// names or q. Closed input counts as quitting.
func SelectObject(in *bufio.Reader, out io.Writer, names []string) (string, bool, error) {
	for {
		fmt.Fprint(out, "\nEnter the number of the file to sign (or 'q' to quit): ")
		line, err := in.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", false, err
			}
			if strings.TrimSpace(line) == "" {
				return "", false, nil
			}
		}

		choice := strings.TrimSpace(line)
		if strings.EqualFold(choice, "q") {
			return "", false, nil
		}
		n, convErr := strconv.Atoi(choice)
		if convErr != nil {
			fmt.Fprintln(out, "Please enter a valid number or 'q' to quit.")
			continue
		}
		if n < 1 || n > len(names) {
			fmt.Fprintln(out, "Invalid selection. Please try again.")
			continue
		}
		return names[n-1], true, nil
	}
}
