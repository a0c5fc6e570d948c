package form

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", true},
		{"A", true},
		{"  A  ", true},
		{"Jo", false},
		{" Jo ", false},
		{"Zoë", false},
		{"李", true},
		{"李明", false},
	}
	for _, tt := range tests {
		err := ValidateName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && reasonOf(err) != ReasonName {
			t.Errorf("ValidateName(%q) reason = %q", tt.in, reasonOf(err))
		}
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"jo@x.com", false},
		{"  jo@x.com  ", false},
		{"first.last@sub.example.co.uk", false},
		{"", true},
		{"jo.x.com", true},
		{"jo@xcom", true},
		{"jo@@x.com", true},
		{"jo@x@y.com", true},
		{"j o@x.com", true},
		{"@x.com", true},
		{"jo@.", true},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
	if reasonOf(ValidateEmail("nope")) != ReasonEmail {
		t.Error("ValidateEmail reason mismatch")
	}
}

func TestValidateMessageBoundary(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{strings.Repeat("a", 9), true},
		{strings.Repeat("a", 10), false},
		{"   " + strings.Repeat("a", 9) + "   ", true},
		{"Hello there!", false},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateMessage(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMessage(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidateRequiredSelect(t *testing.T) {
	if err := ValidateRequiredSelect(""); err == nil || reasonOf(err) != ReasonSelect {
		t.Errorf("ValidateRequiredSelect(\"\") = %v", err)
	}
	if err := ValidateRequiredSelect("Canada"); err != nil {
		t.Errorf("ValidateRequiredSelect(Canada) = %v", err)
	}
}

func TestValidatorsAreIdempotent(t *testing.T) {
	validators := map[string]Validator{
		"name":    ValidateName,
		"email":   ValidateEmail,
		"phone":   ValidatePhone,
		"message": ValidateMessage,
		"select":  ValidateRequiredSelect,
	}
	inputs := []string{"", "A", "jo@x.com", "+2349159739012", "Hello there!", "08031234567"}

	for name, v := range validators {
		for _, in := range inputs {
			first, second := v(in), v(in)
			if (first == nil) != (second == nil) {
				t.Errorf("%s(%q) verdict changed between calls", name, in)
			}
		}
	}
}

func TestFormatValidationErrors(t *testing.T) {
	if got := FormatValidationErrors(nil); got != "No validation errors" {
		t.Errorf("FormatValidationErrors(nil) = %q", got)
	}
	got := FormatValidationErrors([]error{
		&ValidationError{Field: "name", Message: ReasonName},
		&ValidationError{Field: "email", Message: ReasonEmail},
	})
	if !strings.Contains(got, "2 error(s)") || !strings.Contains(got, "1. name: "+ReasonName) {
		t.Errorf("FormatValidationErrors() = %q", got)
	}
}
