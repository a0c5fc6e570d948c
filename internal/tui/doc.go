// Package tui is the interactive terminal rendition of the contact form.
//
// The model owns a page.Page and drives its form.Form with the same events
// a browser would raise: typing (input), leaving a field (blur), changing a
// select (change) and pressing the submit button. Everything the user sees
// is read back from the page's dom elements, so field highlighting, error
// text and the submit button's label and colour are exactly what the form
// core decided.
//
// # Keys
//
//	tab / shift+tab   move between fields and buttons
//	←/→ or space      cycle the options of a select
//	enter             next field, or press the focused button
//	ctrl+s            submit from anywhere
//	ctrl+k            jump to the contact section
//	ctrl+r            clear the form
//	pgup / pgdown     scroll
//	f1                toggle full help
//	esc / ctrl+c      quit
//
// Submission runs as a tea.Cmd so the UI keeps animating while endpoints
// are tried. Timers started by the submit button (the 3 s reversion after
// Sent or Failed) fire on another goroutine; Run wires a scheduler that
// posts a refresh message to the program after each one.
package tui
