package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PhonePolicy is a phone number acceptance rule. Neither built-in policy is a
// general E.164 validator; each encodes the format one deployment expects.
type PhonePolicy struct {
	Name string

	// StripChars are removed, along with all whitespace, before checking.
	StripChars string

	// InternationalLength is the exact length, "+" included, required of
	// values starting with "+". Zero disables the check.
	InternationalLength int

	// LocalMinLength and LocalMaxLength bound values without a "+".
	// A zero max disables the check.
	LocalMinLength int
	LocalMaxLength int

	// Pattern, when set, must match the stripped value.
	Pattern *regexp.Regexp
}

// RegionalPhonePolicy accepts "+" followed by 13 characters, or a 10 to 11
// character local number. Only length is checked.
var RegionalPhonePolicy = PhonePolicy{
	Name:                "regional",
	InternationalLength: 14,
	LocalMinLength:      10,
	LocalMaxLength:      11,
}

// PermissivePhonePolicy accepts an optional "+" and up to 16 digits not
// starting with 0, ignoring spaces, dashes and parentheses.
var PermissivePhonePolicy = PhonePolicy{
	Name:       "permissive",
	StripChars: "-()",
	Pattern:    regexp.MustCompile(`^\+?[1-9]\d{0,15}$`),
}

// PhonePolicyByName returns a built-in policy.
func PhonePolicyByName(name string) (PhonePolicy, error) {
	switch name {
	case "", RegionalPhonePolicy.Name:
		return RegionalPhonePolicy, nil
	case PermissivePhonePolicy.Name:
		return PermissivePhonePolicy, nil
	default:
		return PhonePolicy{}, fmt.Errorf("unknown phone policy %q", name)
	}
}

// Normalize strips whitespace and StripChars.
func (p PhonePolicy) Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(p.StripChars, r) {
			return -1
		}
		return r
	}, s)
}

// Validate passes empty input. The field is optional, so emptiness is the
// caller's concern.
func (p PhonePolicy) Validate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	v := p.Normalize(s)
	n := utf8.RuneCountInString(v)

	if p.Pattern != nil && !p.Pattern.MatchString(v) {
		return NewValidationError(ReasonPhone)
	}
	if strings.HasPrefix(v, "+") {
		if p.InternationalLength > 0 && n != p.InternationalLength {
			return NewValidationError(ReasonPhone)
		}
		return nil
	}
	if p.LocalMaxLength > 0 && (n < p.LocalMinLength || n > p.LocalMaxLength) {
		return NewValidationError(ReasonPhone)
	}
	return nil
}
