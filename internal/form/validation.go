package form

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Reason strings shown next to a failing field.
const (
	ReasonName          = "Name must be at least 2 characters long"
	ReasonEmail         = "Please enter a valid email address"
	ReasonPhone         = "Please enter a valid phone number"
	ReasonMessage       = "Message must be at least 10 characters long"
	ReasonSelect        = "Please select an option"
	ReasonService       = "Please select a service"
	ReasonDestination   = "Please select a destination"
	ReasonNameRequired  = "Please enter your name"
	ReasonEmailRequired = "Please enter your email address"
	ReasonPhoneRequired = "Please enter your phone number"
	ReasonMessageReq    = "Please enter your message"
)

const (
	minNameLength    = 2
	minMessageLength = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator checks a raw field value. It returns nil on pass.
type Validator func(value string) error

// ValidateName passes if the trimmed value has at least 2 characters.
func ValidateName(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < minNameLength {
		return NewValidationError(ReasonName)
	}
	return nil
}

// ValidateEmail passes for local@domain.tld shaped values: no whitespace,
// exactly one @ and a dot somewhere after it.
func ValidateEmail(s string) error {
	if !emailPattern.MatchString(strings.TrimSpace(s)) {
		return NewValidationError(ReasonEmail)
	}
	return nil
}

// ValidatePhone applies RegionalPhonePolicy. Empty input passes.
func ValidatePhone(s string) error {
	return RegionalPhonePolicy.Validate(s)
}

// ValidateMessage passes if the trimmed value has at least 10 characters.
func ValidateMessage(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < minMessageLength {
		return NewValidationError(ReasonMessage)
	}
	return nil
}

// ValidateRequiredSelect passes if a non-placeholder option is selected.
func ValidateRequiredSelect(s string) error {
	return requiredSelect(ReasonSelect)(s)
}

func requiredSelect(reason string) Validator {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return NewValidationError(reason)
		}
		return nil
	}
}

// defaultValidator returns the validator used for a kind when a FieldSpec
// does not supply one.
func defaultValidator(kind Kind, phone PhonePolicy) Validator {
	switch kind {
	case KindName:
		return ValidateName
	case KindEmail:
		return ValidateEmail
	case KindPhone:
		return phone.Validate
	case KindMessage:
		return ValidateMessage
	case KindService:
		return requiredSelect(ReasonService)
	case KindDestination:
		return requiredSelect(ReasonDestination)
	default:
		return func(string) error { return nil }
	}
}

// requiredReason is the Error text for an empty required field at submit time.
func requiredReason(kind Kind) string {
	switch kind {
	case KindName:
		return ReasonNameRequired
	case KindEmail:
		return ReasonEmailRequired
	case KindPhone:
		return ReasonPhoneRequired
	case KindMessage:
		return ReasonMessageReq
	case KindService:
		return ReasonService
	case KindDestination:
		return ReasonDestination
	default:
		return "This field is required"
	}
}
