package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/contactform/internal/ui"
	"github.com/muurk/contactform/internal/version"
)

// Application branding constants
const (
	AppName  = "CONTACT US"
	Tagline  = "Study, work or settle abroad. Tell us where you want to go and we will get back to you."
	HeroText = "Our advisers handle study permits, work permits, visitor visas and permanent residency applications. Fill in the form below and a consultant will reply within one business day."
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

const (
	inputWidth    = 48
	messageHeight = 4
)

// The form shares the CLI palette. The idle submit button uses the primary
// brand color; the secondary button is slate.
var (
	PrimaryColor   = ui.PrimaryColor
	SuccessColor   = ui.SuccessColor
	ErrorColor     = ui.ErrorColor
	TextColor      = ui.TextColor
	SubtleColor    = ui.MutedColor
	SecondaryColor = lipgloss.Color("#374151")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				Underline(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	RequiredMarkStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(1)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)
)

// fieldBox returns the border around an input. Error and success classes
// win over focus.
func fieldBox(focused, hasError, hasSuccess bool) lipgloss.Style {
	color := SubtleColor
	switch {
	case hasError:
		color = ErrorColor
	case hasSuccess:
		color = SuccessColor
	case focused:
		color = PrimaryColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(inputWidth).
		Padding(0, 1)
}

// buttonStyle renders a button. background is the element's inline
// background-color, empty for the stylesheet default.
func buttonStyle(background string, focused, disabled bool, primary bool) lipgloss.Style {
	bg := SecondaryColor
	if primary {
		bg = PrimaryColor
	}
	if background != "" {
		bg = lipgloss.Color(background)
	}
	s := lipgloss.NewStyle().
		Foreground(TextColor).
		Background(bg).
		Padding(0, 3).
		MarginRight(2)
	if focused {
		s = s.Bold(true).Underline(true)
	}
	if disabled {
		s = s.Faint(true)
	}
	return s
}

// RenderApplicationContainer wraps content with the app header and a help footer.
func RenderApplicationContainer(content, footer string, width int) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TitleStyle.Render(AppName),
		SubtitleStyle.Render("  v"+AppVersion()),
	)
	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(PrimaryColor).
		Width(width-4).
		Padding(0, 1)
	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(PrimaryColor).
		Width(width-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(header),
		content,
		footerStyle.Render(footer),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(inner)
}
