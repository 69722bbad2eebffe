package tui

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StateChangedMsg signals that a coordinator, the search session or the
// saved list changed and the view should be redrawn
type StateChangedMsg struct{}

// ClearStatusMsg signals to clear the status message
type ClearStatusMsg struct{}

// SavedToggledMsg reports the result of a save toggle
type SavedToggledMsg struct {
	Title string
	Saved bool
}

// URLOpenedMsg reports that a page was handed to the external opener
type URLOpenedMsg struct {
	URL string
}
