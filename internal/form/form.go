package form

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/muurk/contactform/internal/clock"
	"github.com/muurk/contactform/internal/submission"
)

// Sender delivers a validated payload. *submission.Client implements it.
type Sender interface {
	Submit(ctx context.Context, p *submission.Payload) (*submission.Result, error)
}

// Scroller is an element that can be brought into view.
type Scroller interface {
	ScrollIntoView()
}

// Config binds a form to its page elements.
type Config struct {
	// Fields in validation order. The first failing field gets focus.
	Fields []FieldSpec

	SubmitButton Control

	// ContactSection is scrolled into view by ScrollToContact. Optional.
	ContactSection Scroller

	// PhonePolicy is used by phone fields without their own validator.
	// The zero value means RegionalPhonePolicy.
	PhonePolicy PhonePolicy

	// ResetDelay is how long Sent and Failed are shown. Zero means
	// DefaultResetDelay.
	ResetDelay time.Duration
}

// ValidationResult is the outcome of a submit-time check.
type ValidationResult struct {
	OK           bool
	FirstFailing *Field
	Failures     []*Field
}

// Errors returns one ValidationError per failing field.
func (r ValidationResult) Errors() []error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.err())
	}
	return errs
}

// Submission is a validated payload waiting to be delivered.
type Submission struct {
	Payload *submission.Payload
	seq     uint64
}

// Report summarizes one call to Submit.
type Report struct {
	Validation ValidationResult
	// Submitted is false when validation blocked the submission.
	Submitted bool
	Result    *submission.Result
	Err       error
}

// Form is a contact form bound to its elements. It is safe for concurrent use.
type Form struct {
	mu      sync.Mutex
	fields  []*Field
	byName  map[string]*Field
	button  *button
	contact Scroller
	sender  Sender
	seq     uint64
}

// New binds a form. sched drives the button's reset timers; nil means real time.
func New(cfg Config, sender Sender, sched clock.Scheduler) (*Form, error) {
	if len(cfg.Fields) == 0 {
		return nil, fmt.Errorf("form needs at least one field")
	}
	if cfg.SubmitButton == nil {
		return nil, fmt.Errorf("form needs a submit button")
	}
	if sender == nil {
		return nil, fmt.Errorf("form needs a sender")
	}
	if sched == nil {
		sched = clock.NewReal()
	}
	phone := cfg.PhonePolicy
	if phone.Name == "" && phone.Pattern == nil && phone.LocalMaxLength == 0 && phone.InternationalLength == 0 {
		phone = RegionalPhonePolicy
	}
	delay := cfg.ResetDelay
	if delay <= 0 {
		delay = DefaultResetDelay
	}

	f := &Form{
		byName:  make(map[string]*Field, len(cfg.Fields)),
		contact: cfg.ContactSection,
		sender:  sender,
	}
	for _, spec := range cfg.Fields {
		field, err := newField(spec, phone)
		if err != nil {
			return nil, err
		}
		if _, dup := f.byName[field.name]; dup {
			return nil, fmt.Errorf("duplicate field %q", field.name)
		}
		f.fields = append(f.fields, field)
		f.byName[field.name] = field
	}
	f.button = newButton(&f.mu, cfg.SubmitButton, sched, delay)
	return f, nil
}

// Fields returns the bound fields in validation order.
func (f *Form) Fields() []*Field {
	return append([]*Field(nil), f.fields...)
}

// Field returns the named field, or nil.
func (f *Form) Field(name string) *Field {
	return f.byName[name]
}

// FieldState returns the current state of the named field.
func (f *Form) FieldState(name string) (FieldState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, err := f.lookup(name)
	if err != nil {
		return FieldState{}, err
	}
	return field.state, nil
}

// ButtonState returns the submit button's lifecycle state.
func (f *Form) ButtonState() ButtonState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.button.state
}

func (f *Form) lookup(name string) (*Field, error) {
	field, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return field, nil
}

// HandleBlur checks a field when it loses focus.
func (f *Form) HandleBlur(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, err := f.lookup(name)
	if err != nil {
		return err
	}
	field.check(false, "blur")
	return nil
}

// HandleChange checks a select field when its selection changes.
func (f *Form) HandleChange(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, err := f.lookup(name)
	if err != nil {
		return err
	}
	field.check(false, "change")
	return nil
}

// HandleInput reacts to a keystroke. It can clear an Error but never set one.
func (f *Form) HandleInput(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, err := f.lookup(name)
	if err != nil {
		return err
	}
	field.onInput()
	return nil
}

// Validate resets every field and checks them all as a submit would, without
// moving focus or submitting.
func (f *Form) Validate() ValidationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() ValidationResult {
	for _, field := range f.fields {
		field.apply(FieldState{Status: StatusNeutral}, "submit")
	}

	res := ValidationResult{OK: true}
	for _, field := range f.fields {
		if field.check(true, "submit").Status == StatusError {
			res.OK = false
			res.Failures = append(res.Failures, field)
			if res.FirstFailing == nil {
				res.FirstFailing = field
			}
		}
	}
	return res
}

// BeginSubmit validates the form. When validation fails the first failing
// field is scrolled into view and focused, and the returned Submission is nil.
// When it passes the button enters Sending and the current values are
// captured for Deliver. Only an idle button accepts a submission; Sent and
// Failed keep the control disabled until their reversion fires.
func (f *Form) BeginSubmit() (*Submission, ValidationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.button.state {
	case ButtonSending:
		return nil, ValidationResult{}, ErrSubmitInProgress
	case ButtonSent, ButtonFailed:
		return nil, ValidationResult{}, ErrSubmitDisabled
	}

	res := f.validateLocked()
	if !res.OK {
		res.FirstFailing.input.ScrollIntoView()
		res.FirstFailing.input.Focus()
		return nil, res, nil
	}

	f.button.sending()
	f.seq++
	return &Submission{Payload: f.payloadLocked(), seq: f.seq}, res, nil
}

// Deliver sends a submission. It holds no lock and may run on any goroutine.
func (f *Form) Deliver(ctx context.Context, s *Submission) (*submission.Result, error) {
	return f.sender.Submit(ctx, s.Payload)
}

// CompleteSubmit moves the button to Sent or Failed. A completion for any
// submission other than the one in flight is ignored.
func (f *Form) CompleteSubmit(s *Submission, res *submission.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s == nil || s.seq != f.seq || f.button.state != ButtonSending {
		return
	}
	if err != nil || res == nil {
		f.button.failed()
		return
	}
	f.button.sent(f.resetLocked)
}

// Submit validates and, if valid, delivers synchronously. A delivery failure
// is returned as well as recorded on the Report.
func (f *Form) Submit(ctx context.Context) (*Report, error) {
	sub, res, err := f.BeginSubmit()
	if err != nil {
		return nil, err
	}
	report := &Report{Validation: res}
	if sub == nil {
		return report, nil
	}

	report.Submitted = true
	report.Result, report.Err = f.Deliver(ctx, sub)
	f.CompleteSubmit(sub, report.Result, report.Err)
	return report, report.Err
}

// Payload returns the current field values in field order.
func (f *Form) Payload() *submission.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payloadLocked()
}

func (f *Form) payloadLocked() *submission.Payload {
	p := submission.NewPayload()
	for _, field := range f.fields {
		p.Add(field.name, field.input.Value())
	}
	return p
}

// Clear empties every field and returns them all to Neutral. The submit
// button is left alone.
func (f *Form) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Form) resetLocked() {
	for _, field := range f.fields {
		field.input.SetValue("")
		field.apply(FieldState{Status: StatusNeutral}, "reset")
	}
}

// ScrollToContact brings the contact section into view. Call-to-action
// buttons elsewhere on the page use it.
func (f *Form) ScrollToContact() {
	if f.contact != nil {
		f.contact.ScrollIntoView()
	}
}
