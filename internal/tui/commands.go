package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/favorites"
)

// Command factories for async operations

// WaitForChangeCmd blocks until a background component reports a change
func WaitForChangeCmd(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return StateChangedMsg{}
	}
}

// ToggleSavedCmd toggles an entry in the saved list
func ToggleSavedCmd(store *favorites.Store, entry favorites.Entry) tea.Cmd {
	return func() tea.Msg {
		saved := store.Toggle(entry)
		return SavedToggledMsg{Title: entry.Title, Saved: saved}
	}
}

// OpenURLCmd opens url with the external opener
func OpenURLCmd(opener URLOpener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "opening page"}
		}
		return URLOpenedMsg{URL: url}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
