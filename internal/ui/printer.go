package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/submission"
)

// Printer provides methods for printing UI components to a writer.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetWidth overrides the detected terminal width.
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintLines writes multiple lines
func (p *Printer) PrintLines(lines ...string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(p.out, line)
	}
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintValidation prints one line per failing field, in form order.
func (p *Printer) PrintValidation(res form.ValidationResult) {
	if res.OK {
		return
	}
	errs := res.Errors()
	details := make([]Detail, 0, len(errs))
	for _, err := range errs {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			details = append(details, Detail{Key: ve.Field, Value: ve.Message})
		}
	}
	r := NewWarningResult("Please fix the highlighted fields", details...).SetWidth(p.width)
	p.Println(r.Render())
}

// PrintDelivery prints the endpoint list followed by the outcome box.
// err is the error returned by the submission client, res its result.
func (p *Printer) PrintDelivery(endpoints []string, res *submission.Result, err error) {
	var attempts []submission.Attempt
	var exhausted *submission.ExhaustedError
	switch {
	case res != nil:
		attempts = res.Attempts
	case errors.As(err, &exhausted):
		attempts = exhausted.Attempts
	}

	prog := NewProgress("Delivering message", endpoints).SetWidth(p.width).ApplyAttempts(attempts)
	p.Println(prog.Render())
	p.Newline()

	if err == nil && res != nil {
		p.PrintSuccess(form.LabelSent,
			Detail{Key: "Endpoint", Value: EndpointName(res.Endpoint)},
			Detail{Key: "Status", Value: fmt.Sprintf("HTTP %d", res.StatusCode)},
			Detail{Key: "Attempts", Value: fmt.Sprintf("%d of %d", len(res.Attempts), len(endpoints))},
			Detail{Key: "Submission", Value: res.SubmissionID},
		)
		return
	}

	var cause error = err
	if exhausted != nil {
		if last := exhausted.Last(); last != nil && last.Err != nil {
			cause = last.Err
		}
	}
	tips := Troubleshooting(cause)
	if exhausted != nil && unreachable(exhausted.Attempts) {
		tips = append([]string{TipUnreachable}, tips...)
	}
	p.PrintError(form.LabelFailed, err, tips)
}

// TipUnreachable leads the tips when no endpoint answered at all.
const TipUnreachable = "No endpoint could be reached, check this machine's network first"

// unreachable reports whether every attempt failed before getting an HTTP
// response.
func unreachable(attempts []submission.Attempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		if !submission.IsNetworkError(a.Err) {
			return false
		}
	}
	return true
}

// Troubleshooting turns the client's hint text into bullet items.
func Troubleshooting(err error) []string {
	if err == nil {
		return nil
	}
	var tips []string
	for _, line := range strings.Split(submission.GetTroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		tips = append(tips, line)
	}
	return tips
}
