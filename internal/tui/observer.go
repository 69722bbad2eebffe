package tui

// ChangeNotifier adapts change callbacks from background goroutines to a
// channel Bubble Tea can wait on. Bursts of changes collapse into one
// pending signal.
type ChangeNotifier struct {
	ch chan struct{}
}

// NewChangeNotifier creates a new notifier
func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{ch: make(chan struct{}, 1)}
}

// Notify records a change (non-blocking if a signal is already pending)
func (n *ChangeNotifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// Changes returns the receive side of the notifier
func (n *ChangeNotifier) Changes() <-chan struct{} {
	return n.ch
}
