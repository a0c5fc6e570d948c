package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/submission"
	"github.com/muurk/contactform/internal/ui"
)

// refresh re-renders the page into the viewport.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderBody())
}

// renderBody draws the page from the dom state and records where the
// contact section, each field and the buttons start.
func (m *Model) renderBody() string {
	var b strings.Builder
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width).PaddingLeft(1)
	line := func() int { return strings.Count(b.String(), "\n") }
	write := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}

	write(wrap.Render(SubtitleStyle.Render(Tagline)))
	write("")
	write(wrap.Render(HeroText))
	write("")

	m.contactLine = line()
	write(wrap.Render(SectionTitleStyle.Render("Get in touch")))
	write("")

	m.fieldLines = m.fieldLines[:0]
	for i := range m.inputs {
		in := &m.inputs[i]
		m.fieldLines = append(m.fieldLines, line())

		label := LabelStyle.Render(in.view.Label)
		if in.view.Required {
			label += RequiredMarkStyle.Render(" *")
		}
		write(" " + label)

		box := fieldBox(i == m.focus,
			in.view.Input.HasClass(form.ClassError),
			in.view.Input.HasClass(form.ClassSuccess))
		write(box.Render(m.inputView(in)))

		if !in.view.Error.Hidden() && in.view.Error.Text() != "" {
			write(FieldErrorStyle.Render(in.view.Error.Text()))
		}
		write("")
	}

	m.buttonLine = line()
	write(" " + m.buttonsView())
	write("")

	if status := m.statusLine(); status != "" {
		write(wrap.Render(StatusStyle.Render(status)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) inputView(in *fieldInput) string {
	switch {
	case in.multi:
		return in.area.View()
	case !in.view.IsSelect():
		return in.text.View()
	}

	value := in.view.Input.Value()
	label := value
	for _, o := range in.view.Input.Options() {
		if o.Value == value {
			label = o.Label
			break
		}
	}
	if value == "" {
		label = PlaceholderStyle.Render(label)
	}
	return "‹ " + label + " ›"
}

func (m *Model) buttonsView() string {
	submit := m.page.Submit
	label := submit.Label()
	if m.page.Form.ButtonState() == form.ButtonSending {
		label = m.spinner.View() + " " + label
	}
	send := buttonStyle(submit.Style(form.BackgroundStyle),
		m.focus == m.submitIndex(), submit.Disabled(), true).Render(label)

	clr := m.page.Clear
	clear := buttonStyle(clr.Style(form.BackgroundStyle),
		m.focus == m.clearIndex(), clr.Disabled(), false).Render(clr.Label())

	return lipgloss.JoinHorizontal(lipgloss.Top, send, clear)
}

// statusLine summarises the last delivery or notice.
func (m *Model) statusLine() string {
	if m.page.Form.ButtonState() == form.ButtonSending {
		return "Delivering your message…"
	}
	if m.notice != "" {
		return m.notice
	}
	if m.lastResult != nil {
		return fmt.Sprintf("Delivered via %s after %d attempt(s).",
			ui.EndpointName(m.lastResult.Endpoint), len(m.lastResult.Attempts))
	}
	if m.lastErr != nil {
		var exhausted *submission.ExhaustedError
		if errors.As(m.lastErr, &exhausted) {
			if last := exhausted.Last(); last != nil && last.Err != nil {
				return fmt.Sprintf("All %d endpoint(s) failed. Last: %s",
					len(exhausted.Attempts), submission.GetShortErrorMessage(last.Err))
			}
		}
		return m.lastErr.Error()
	}
	return ""
}
