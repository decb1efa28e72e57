// Package manager implements the interactive, menu driven record manager.
// Each screen is a State with its own transition function; every change to
// the records is saved before the next screen is shown.
package manager

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/records"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/services"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/storage"
	"go.uber.org/zap"
)

const clearScreen = "\033[H\033[2J"

type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// ClearScreen clears the terminal before each menu.
	ClearScreen bool
	// Events defaults to services.NopPublisher.
	Events services.Publisher
}

type Manager struct {
	store   storage.Storage
	events  services.Publisher
	in      *bufio.Reader
	out     io.Writer
	log     *zap.Logger
	now     func() time.Time
	clear   bool
	records *models.Records
}

func New(store storage.Storage, in io.Reader, out io.Writer, log *zap.Logger, opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Events == nil {
		opts.Events = services.NopPublisher{}
	}
	return &Manager{
		store:   store,
		events:  opts.Events,
		in:      bufio.NewReader(in),
		out:     out,
		log:     log,
		now:     opts.Now,
		clear:   opts.ClearScreen,
		records: models.NewRecords(),
	}
}

// Run drives the menus until the user exits. Closing the input ends the
// session as if Exit had been chosen.
func (m *Manager) Run(ctx context.Context) error {
	state := MainMenu
	for state != Exit {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := m.step(ctx, state)
		if errors.Is(err, io.EOF) {
			next, err = Exit, nil
		}
		if err != nil {
			return err
		}
		m.log.Debug("transition", zap.Stringer("from", state), zap.Stringer("to", next))
		state = next
	}
	fmt.Fprintln(m.out, "\nGoodbye!")
	return nil
}

func (m *Manager) step(ctx context.Context, state State) (State, error) {
	switch state {
	case MainMenu:
		return m.mainMenu(ctx)
	case ViewList:
		return m.viewList()
	case DeleteMenu:
		return m.deleteMenu(ctx)
	case HistoryView:
		return m.historyView()
	}
	return Exit, fmt.Errorf("unknown state %v", state)
}

func (m *Manager) mainMenu(ctx context.Context) (State, error) {
	m.clearScreen()

	loaded, err := m.store.Load(ctx)
	if err != nil {
		return Exit, err
	}
	m.records = loaded

	fmt.Fprintln(m.out, "\nURL Management Tool")
	fmt.Fprintln(m.out, strings.Repeat("=", 20))
	fmt.Fprintln(m.out, "1. View URLs")
	fmt.Fprintln(m.out, "2. Manage/Delete URLs")
	fmt.Fprintln(m.out, "3. Exit")

	choice, err := m.prompt("\nEnter your choice (1-3): ")
	if err != nil {
		return Exit, err
	}
	next, err := NextFromMain(choice)
	if err != nil {
		return next, m.reject("Invalid choice. Please try again.")
	}
	return next, nil
}

func (m *Manager) viewList() (State, error) {
	RenderList(m.out, m.records, m.now())
	if err := m.pause("\nPress Enter to continue..."); err != nil {
		return Exit, err
	}
	return MainMenu, nil
}

func (m *Manager) deleteMenu(ctx context.Context) (State, error) {
	m.clearScreen()
	if !RenderList(m.out, m.records, m.now()) {
		return MainMenu, nil
	}

	fmt.Fprintln(m.out, "\nOptions:")
	fmt.Fprintln(m.out, "1. Delete specific URL(s)")
	fmt.Fprintln(m.out, "2. Delete all expired URLs")
	fmt.Fprintln(m.out, "3. Delete all URLs")
	fmt.Fprintln(m.out, "4. Show URL history")
	fmt.Fprintln(m.out, "5. Back to main menu")

	choice, err := m.prompt("\nEnter your choice (1-5): ")
	if err != nil {
		return Exit, err
	}
	action, next, err := NextFromDeleteMenu(choice)
	if err != nil {
		return next, m.reject("Invalid choice. Please try again.")
	}

	switch action {
	case DeleteSelected:
		err = m.deleteSelected(ctx)
	case DeleteExpired:
		err = m.deleteExpired(ctx)
	case DeleteEverything:
		err = m.deleteEverything(ctx)
	}
	if err != nil {
		return Exit, err
	}
	return next, nil
}

func (m *Manager) historyView() (State, error) {
	answer, err := m.prompt("\nEnter URL number to show history: ")
	if err != nil {
		return Exit, err
	}

	idx, convErr := strconv.Atoi(strings.TrimSpace(answer))
	if convErr != nil {
		return DeleteMenu, m.reject("Invalid input. Please enter a number.")
	}
	key, ok := records.KeyAt(m.records, idx)
	if !ok {
		return DeleteMenu, m.reject("Invalid URL number")
	}

	rec, _ := m.records.Get(key)
	RenderHistory(m.out, key, rec, m.now())
	if err := m.pause("\nPress Enter to continue..."); err != nil {
		return Exit, err
	}
	return DeleteMenu, nil
}

func (m *Manager) deleteSelected(ctx context.Context) error {
	answer, err := m.prompt("\nEnter URL numbers to delete (comma-separated, e.g., 1,3,4): ")
	if err != nil {
		return err
	}
	indices, err := records.ParseIndices(answer)
	if err != nil {
		return m.reject("Invalid input. Please enter numbers separated by commas.")
	}

	next := m.records.Clone()
	deleted := records.DeleteIndices(next, indices)
	if len(deleted) > 0 {
		if err := m.commit(ctx, next, services.SubjectDeleted, deleted); err != nil {
			return err
		}
	}
	for _, key := range deleted {
		fmt.Fprintf(m.out, "\nDeleted URL for: %s\n", key)
	}
	return m.pause("\nPress Enter to continue...")
}

func (m *Manager) deleteExpired(ctx context.Context) error {
	next := m.records.Clone()
	res, err := records.Sweep(next, m.now())
	if err != nil {
		fmt.Fprintf(m.out, "\nCannot delete expired URLs: %v\n", err)
		return m.pause("Press Enter to continue...")
	}
	if len(res.Removed) > 0 {
		if err := m.commit(ctx, next, services.SubjectSwept, res.Removed); err != nil {
			return err
		}
	}
	fmt.Fprintf(m.out, "\nDeleted %d expired URL(s)\n", len(res.Removed))
	return m.pause("Press Enter to continue...")
}

func (m *Manager) deleteEverything(ctx context.Context) error {
	answer, err := m.prompt("\nAre you sure you want to delete ALL URLs? (yes/no): ")
	if err != nil {
		return err
	}
	if Confirmed(answer) {
		keys := m.records.Keys()
		next := m.records.Clone()
		records.DeleteAll(next)
		if err := m.commit(ctx, next, services.SubjectDeleted, keys); err != nil {
			return err
		}
		fmt.Fprintln(m.out, "\nAll URLs have been deleted.")
	}
	return m.pause("Press Enter to continue...")
}

// commit saves next and makes it the working copy. The working copy is
// left untouched when the save fails.
func (m *Manager) commit(ctx context.Context, next *models.Records, subject string, keys []string) error {
	if err := m.store.Save(ctx, next); err != nil {
		return err
	}
	m.records = next
	m.events.Publish(subject, services.RecordEvent{
		Action:     subject,
		Keys:       keys,
		OccurredAt: m.now(),
	})
	m.log.Info("records updated", zap.String("action", subject), zap.Strings("keys", keys))
	return nil
}

// reject reports invalid input and waits for acknowledgement. It only
// returns an error when the input is exhausted.
func (m *Manager) reject(msg string) error {
	fmt.Fprintf(m.out, "\n%s\n", msg)
	return m.pause("Press Enter to continue...")
}

func (m *Manager) pause(msg string) error {
	_, err := m.prompt(msg)
	return err
}

func (m *Manager) prompt(msg string) (string, error) {
	fmt.Fprint(m.out, msg)
	line, err := m.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (m *Manager) clearScreen() {
	if m.clear {
		fmt.Fprint(m.out, clearScreen)
	}
}
