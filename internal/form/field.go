package form

import (
	"fmt"
	"strings"

	"github.com/muurk/contactform/internal/logging"
)

// Kind identifies what a field holds and picks its default validator.
type Kind string

const (
	KindName        Kind = "name"
	KindEmail       Kind = "email"
	KindPhone       Kind = "phone"
	KindService     Kind = "service"
	KindDestination Kind = "destination"
	KindMessage     Kind = "message"
)

// Marker classes applied to a field's input.
const (
	ClassError   = "error"
	ClassSuccess = "success"
)

// Status is the visible validation state of a field.
type Status int

const (
	StatusNeutral Status = iota
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusNeutral:
		return "neutral"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// FieldState is a Status plus the reason shown for Error.
type FieldState struct {
	Status Status
	Reason string
}

// Input is the element a field reads its value from and marks.
type Input interface {
	Value() string
	SetValue(string)
	AddClass(string)
	RemoveClass(string)
	Focus()
	ScrollIntoView()
}

// TextSlot is the element that displays a field's error text.
type TextSlot interface {
	SetText(string)
	SetHidden(bool)
}

// FieldSpec binds a named field to its elements.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
	Input    Input
	// ErrorSlot may be nil when the page has no error text for the field.
	ErrorSlot TextSlot
	// Validate overrides the kind's default validator.
	Validate Validator
	// RequiredReason overrides the kind's default "required" text.
	RequiredReason string
}

// Field is one bound form field and its current state.
type Field struct {
	name           string
	kind           Kind
	required       bool
	input          Input
	slot           TextSlot
	validate       Validator
	requiredReason string
	state          FieldState
}

func newField(spec FieldSpec, phone PhonePolicy) (*Field, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("field name cannot be empty")
	}
	if spec.Input == nil {
		return nil, fmt.Errorf("field %q has no input element", spec.Name)
	}
	f := &Field{
		name:           spec.Name,
		kind:           spec.Kind,
		required:       spec.Required,
		input:          spec.Input,
		slot:           spec.ErrorSlot,
		validate:       spec.Validate,
		requiredReason: spec.RequiredReason,
	}
	if f.validate == nil {
		f.validate = defaultValidator(spec.Kind, phone)
	}
	if f.requiredReason == "" {
		f.requiredReason = requiredReason(spec.Kind)
	}
	return f, nil
}

// Name returns the field's form name.
func (f *Field) Name() string { return f.name }

// Kind returns the field kind.
func (f *Field) Kind() Kind { return f.kind }

// Required reports whether the field must be filled to submit.
func (f *Field) Required() bool { return f.required }

// Value returns the raw value of the bound input.
func (f *Field) Value() string { return f.input.Value() }

// State returns the field's last applied state.
func (f *Field) State() FieldState { return f.state }

// evaluate computes the state a check would produce without applying it.
func (f *Field) evaluate(atSubmit bool) FieldState {
	v := f.input.Value()
	if strings.TrimSpace(v) == "" {
		if f.required && atSubmit {
			return FieldState{Status: StatusError, Reason: f.requiredReason}
		}
		return FieldState{Status: StatusNeutral}
	}
	if err := f.validate(v); err != nil {
		return FieldState{Status: StatusError, Reason: reasonOf(err)}
	}
	return FieldState{Status: StatusSuccess}
}

// check runs the validator and applies the resulting state.
func (f *Field) check(atSubmit bool, trigger string) FieldState {
	st := f.evaluate(atSubmit)
	f.apply(st, trigger)
	return st
}

// onInput handles a keystroke. Only an Error can change: a now-valid value
// becomes Success and an emptied optional field goes back to Neutral.
func (f *Field) onInput() {
	if f.state.Status != StatusError {
		return
	}
	st := f.evaluate(false)
	switch {
	case st.Status == StatusSuccess:
		f.apply(st, "input")
	case st.Status == StatusNeutral && !f.required:
		f.apply(st, "input")
	}
}

// err returns the field's Error as a ValidationError, or nil.
func (f *Field) err() error {
	if f.state.Status != StatusError {
		return nil
	}
	return &ValidationError{Field: f.name, Message: f.state.Reason}
}

func (f *Field) apply(st FieldState, trigger string) {
	prev := f.state
	f.state = st

	switch st.Status {
	case StatusError:
		f.input.AddClass(ClassError)
		f.input.RemoveClass(ClassSuccess)
		if f.slot != nil {
			f.slot.SetText(st.Reason)
			f.slot.SetHidden(false)
		}
	case StatusSuccess:
		f.input.AddClass(ClassSuccess)
		f.input.RemoveClass(ClassError)
		f.clearSlot()
	default:
		f.input.RemoveClass(ClassError)
		f.input.RemoveClass(ClassSuccess)
		f.clearSlot()
	}

	if prev != st {
		logging.LogFieldTransition(f.name, prev.Status.String(), st.Status.String(), trigger, st.Reason)
	}
}

func (f *Field) clearSlot() {
	if f.slot == nil {
		return
	}
	f.slot.SetText("")
	f.slot.SetHidden(true)
}
