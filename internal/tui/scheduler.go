package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/contactform/internal/clock"
)

// refreshMsg asks the model to re-read the page after a timer fired.
type refreshMsg struct{}

// Notifier forwards messages to a program once one is attached.
type Notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Attach sets the program that receives refresh messages.
func (n *Notifier) Attach(p *tea.Program) {
	n.mu.Lock()
	n.send = p.Send
	n.mu.Unlock()
}

func (n *Notifier) notify() {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(refreshMsg{})
	}
}

// RefreshingScheduler wraps a scheduler so every callback is followed by a
// refresh of the program attached to its Notifier.
type RefreshingScheduler struct {
	clock.Scheduler
	Notifier *Notifier
}

// NewRefreshingScheduler wraps base. A nil base uses wall-clock time.
func NewRefreshingScheduler(base clock.Scheduler) *RefreshingScheduler {
	if base == nil {
		base = clock.NewReal()
	}
	return &RefreshingScheduler{Scheduler: base, Notifier: &Notifier{}}
}

// AfterFunc runs f then notifies the program.
func (s *RefreshingScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	return s.Scheduler.AfterFunc(d, func() {
		f()
		s.Notifier.notify()
	})
}
