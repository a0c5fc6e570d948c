// Package form implements the contact form core: field validators, the
// per-field Neutral/Error/Success state machine, submit-time validation, the
// submit button lifecycle and hand-off to a submission Sender.
//
// # Field States
//
// A field starts Neutral. Blur and change events run the field's validator:
// an empty value leaves the field Neutral, a failing value moves it to Error
// and a passing value to Success. Keystrokes only ever clear an Error, they
// never raise one, so users are not shown errors mid-word.
//
// At submit time every field is reset to Neutral and re-checked in order. An
// empty required field becomes Error with its "required" reason.
//
// # Elements
//
// The core never looks elements up. Each field is bound once, at
// construction, to an Input and an error TextSlot. Any type with the right
// methods works; internal/dom provides the in-memory implementation.
//
// # Submission
//
//	f, _ := form.New(cfg, client, clock.NewReal())
//	report, err := f.Submit(ctx)
//
// Front ends that must not block (the terminal UI) call BeginSubmit, run
// Deliver off the UI loop, and finish with CompleteSubmit.
//
// # Button Lifecycle
//
//	Idle -> Sending -> Sent   -(reset delay)-> form cleared, Idle
//	                -> Failed -(reset delay)-> Idle, values kept
//
// Starting a new submission stops any pending reversion timer, and each
// timer carries a generation number so a stale one can never overwrite a
// newer state.
package form
