package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/contactform/internal/submission"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet tried
	StepRunning                    // Request in flight
	StepComplete                   // Endpoint accepted the message
	StepFailed                     // Endpoint rejected or unreachable
	StepSkipped                    // Not needed after an earlier success
)

// Step is one endpoint in the fallback order.
type Step struct {
	Number  int        // 1-based position in the endpoint list
	Name    string     // Endpoint display name
	Status  StepStatus // Current status
	Message string     // Optional note (e.g., "HTTP 503", "120ms")
}

// Progress shows how far delivery got through the endpoint list.
type Progress struct {
	Label     string
	Steps     []Step
	Current   int     // Step in flight or last tried (1-based)
	Total     int
	Percent   float64 // Fraction of endpoints tried (0.0 - 1.0)
	Width     int
	ShowBar   bool
	ShowSteps bool
	bar       progress.Model
}

// NewProgress creates a pending progress display for the given endpoints.
func NewProgress(label string, endpoints []string) *Progress {
	steps := make([]Step, len(endpoints))
	for i, ep := range endpoints {
		steps[i] = Step{Number: i + 1, Name: EndpointName(ep), Status: StepPending}
	}

	p := &Progress{
		Label:     label,
		Steps:     steps,
		Total:     len(endpoints),
		ShowBar:   true,
		ShowSteps: true,
	}
	return p.SetWidth(GetTerminalWidth())
}

// SetWidth sets the terminal width for responsive rendering
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20 // Leave room for percentage and step count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// UpdateStep updates a specific step's status and optional message
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	idx := stepNumber - 1
	p.Steps[idx].Status = status
	p.Steps[idx].Message = message

	if status != StepPending {
		p.Current = stepNumber
	}
	if p.Total == 0 {
		return
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepFailed || s.Status == StepSkipped {
			done++
		}
	}
	p.Percent = float64(done) / float64(p.Total)
}

// ApplyAttempts marks each attempted endpoint with its outcome. Endpoints
// after a success are marked skipped.
func (p *Progress) ApplyAttempts(attempts []submission.Attempt) *Progress {
	succeeded := false
	for _, a := range attempts {
		status := StepFailed
		if a.Outcome == submission.OutcomeSuccess {
			status = StepComplete
			succeeded = true
		}
		p.UpdateStep(a.EndpointIndex+1, status, AttemptNote(a))
	}
	if succeeded {
		for _, s := range p.Steps {
			if s.Status == StepPending {
				p.UpdateStep(s.Number, StepSkipped, "not needed")
			}
		}
	}
	return p
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}
	if p.ShowBar {
		b.WriteString(p.renderProgressBar())
		b.WriteString("\n\n")
	}
	if p.ShowSteps {
		lines := make([]string, 0, len(p.Steps))
		for _, step := range p.Steps {
			lines = append(lines, p.renderStepLine(step))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

func (p *Progress) renderProgressBar() string {
	barView := p.bar.ViewAs(p.Percent)
	percentStr := fmt.Sprintf("%3.0f%%", p.Percent*100)
	stepStr := fmt.Sprintf("[%d/%d]", p.Current, p.Total)

	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %s  %s", barView, percentStr, stepStr))
}

func (p *Progress) renderStepLine(step Step) string {
	prefix := fmt.Sprintf("  [%d/%d]", step.Number, p.Total)

	var marker string
	var style lipgloss.Style
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(style.Render(step.Name))

	// Keep markers in one column
	padding := 45 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// EndpointName shortens an endpoint URL to host and path for display.
func EndpointName(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host + u.Path
}

// AttemptNote summarises an attempt as "HTTP 503, 120ms" or the short
// network error.
func AttemptNote(a submission.Attempt) string {
	var parts []string
	switch {
	case a.StatusCode != 0:
		parts = append(parts, fmt.Sprintf("HTTP %d", a.StatusCode))
	case a.Err != nil:
		parts = append(parts, submission.GetShortErrorMessage(a.Err))
	}
	if a.Latency > 0 {
		parts = append(parts, a.Latency.Round(time.Millisecond).String())
	}
	return strings.Join(parts, ", ")
}
