package manager

import (
	"fmt"
	"strings"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
)

// State is a screen of the interactive manager.
type State int

const (
	MainMenu State = iota
	ViewList
	DeleteMenu
	HistoryView
	Exit
)

func (s State) String() string {
	switch s {
	case MainMenu:
		return "main menu"
	case ViewList:
		return "view list"
	case DeleteMenu:
		return "delete menu"
	case HistoryView:
		return "history view"
	case Exit:
		return "exit"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Action is an operation chosen from the delete menu.
type Action int

const (
	NoAction Action = iota
	DeleteSelected
	DeleteExpired
	DeleteEverything
)

// NextFromMain maps a main menu choice to the next state. Unknown choices
// keep the main menu and return apperr.ErrUserInput.
func NextFromMain(choice string) (State, error) {
	switch strings.TrimSpace(choice) {
	case "1":
		return ViewList, nil
	case "2":
		return DeleteMenu, nil
	case "3":
		return Exit, nil
	}
	return MainMenu, fmt.Errorf("%w: %q", apperr.ErrUserInput, strings.TrimSpace(choice))
}

// NextFromDeleteMenu maps a delete menu choice to the action to run and the
// state that follows it.
func NextFromDeleteMenu(choice string) (Action, State, error) {
	switch strings.TrimSpace(choice) {
	case "1":
		return DeleteSelected, DeleteMenu, nil
	case "2":
		return DeleteExpired, DeleteMenu, nil
	case "3":
		return DeleteEverything, DeleteMenu, nil
	case "4":
		return NoAction, HistoryView, nil
	case "5":
		return NoAction, MainMenu, nil
	}
	return NoAction, DeleteMenu, fmt.Errorf("%w: %q", apperr.ErrUserInput, strings.TrimSpace(choice))
}

// Confirmed reports whether the answer to a destructive prompt is an
// explicit yes.
func Confirmed(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
