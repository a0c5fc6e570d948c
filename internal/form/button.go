package form

import (
	"fmt"
	"sync"
	"time"

	"github.com/muurk/contactform/internal/clock"
	"github.com/muurk/contactform/internal/logging"
)

// Submit button labels and colors.
const (
	LabelSending = "Sending…"
	LabelSent    = "Message Sent!"
	LabelFailed  = "Failed to Send"
	ColorSent    = "#10b981"
	ColorFailed  = "#ef4444"

	// DefaultIdleLabel is used when the control has no label of its own.
	DefaultIdleLabel = "Send Message"

	// BackgroundStyle is the inline style property the button colors use.
	BackgroundStyle = "background-color"
)

// DefaultResetDelay is how long Sent and Failed are shown.
const DefaultResetDelay = 3000 * time.Millisecond

// Control is the submit button element.
type Control interface {
	Label() string
	SetLabel(string)
	SetDisabled(bool)
	SetStyle(prop, value string)
}

// ButtonState is the submit button lifecycle state.
type ButtonState int

const (
	ButtonIdle ButtonState = iota
	ButtonSending
	ButtonSent
	ButtonFailed
)

func (s ButtonState) String() string {
	switch s {
	case ButtonIdle:
		return "idle"
	case ButtonSending:
		return "sending"
	case ButtonSent:
		return "sent"
	case ButtonFailed:
		return "failed"
	default:
		return fmt.Sprintf("ButtonState(%d)", s)
	}
}

// button drives the submit control. All methods expect mu to be held;
// timer callbacks acquire it themselves.
type button struct {
	mu        sync.Locker
	control   Control
	idleLabel string
	sched     clock.Scheduler
	delay     time.Duration

	state ButtonState
	gen   uint64
	timer clock.Timer
}

func newButton(mu sync.Locker, control Control, sched clock.Scheduler, delay time.Duration) *button {
	label := control.Label()
	if label == "" {
		label = DefaultIdleLabel
	}
	return &button{
		mu:        mu,
		control:   control,
		idleLabel: label,
		sched:     sched,
		delay:     delay,
	}
}

func (b *button) setState(s ButtonState) {
	if b.state != s {
		logging.LogButtonTransition(b.state.String(), s.String())
	}
	b.state = s
}

func (b *button) sending() {
	b.cancelPending()
	b.setState(ButtonSending)
	b.control.SetDisabled(true)
	b.control.SetLabel(LabelSending)
	b.control.SetStyle(BackgroundStyle, "")
}

// sent shows success, then runs reset and returns to idle after the delay.
func (b *button) sent(reset func()) {
	b.setState(ButtonSent)
	b.control.SetLabel(LabelSent)
	b.control.SetStyle(BackgroundStyle, ColorSent)
	b.schedule(func() {
		reset()
		b.idle()
	})
}

// failed shows failure, then returns to idle after the delay.
func (b *button) failed() {
	b.setState(ButtonFailed)
	b.control.SetLabel(LabelFailed)
	b.control.SetStyle(BackgroundStyle, ColorFailed)
	b.schedule(b.idle)
}

func (b *button) idle() {
	b.setState(ButtonIdle)
	b.control.SetLabel(b.idleLabel)
	b.control.SetDisabled(false)
	b.control.SetStyle(BackgroundStyle, "")
}

func (b *button) schedule(fn func()) {
	b.gen++
	gen := b.gen
	b.timer = b.sched.AfterFunc(b.delay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if gen != b.gen {
			return
		}
		b.timer = nil
		fn()
	})
}

// cancelPending stops any scheduled reversion and invalidates it in case
// its callback is already waiting on the lock.
func (b *button) cancelPending() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
}
