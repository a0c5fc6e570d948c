package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/logging"
	"github.com/muurk/contactform/internal/page"
	"github.com/muurk/contactform/internal/submission"
	"github.com/muurk/contactform/internal/ui"
)

// fieldInput pairs a page field with the widget the user types into.
// Selects have no widget; their value lives on the dom element.
type fieldInput struct {
	view  page.FieldView
	text  textinput.Model
	area  textarea.Model
	multi bool
}

func (in *fieldInput) focus() tea.Cmd {
	in.view.Input.Focus()
	switch {
	case in.view.IsSelect():
		return nil
	case in.multi:
		return in.area.Focus()
	default:
		return in.text.Focus()
	}
}

func (in *fieldInput) blur() {
	in.text.Blur()
	in.area.Blur()
}

// reset copies the dom value back into the widget.
func (in *fieldInput) reset() {
	v := in.view.Input.Value()
	if in.multi {
		in.area.SetValue(v)
		return
	}
	in.text.SetValue(v)
}

const (
	noticeSending   = "Already sending, please wait"
	noticeResetting = "Please wait for the button to reset"
)

// deliveredMsg carries the outcome of an asynchronous delivery.
type deliveredMsg struct {
	sub *form.Submission
	res *submission.Result
	err error
}

// Model is the bubbletea model for the contact form.
type Model struct {
	page   *page.Page
	ctx    context.Context
	inputs []fieldInput
	focus  int

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	// Line numbers in the rendered body, updated on every refresh.
	contactLine int
	fieldLines  []int
	buttonLine  int

	jumpToContact bool
	lastResult    *submission.Result
	lastErr       error
	notice        string
	quitting      bool
}

// ModelOption customizes NewModel.
type ModelOption func(*Model)

// WithJumpToContact scrolls to the contact section once the terminal size
// is known, like following a "#contact" link.
func WithJumpToContact() ModelOption {
	return func(m *Model) { m.jumpToContact = true }
}

// NewModel creates a model driving p. ctx bounds every delivery.
func NewModel(ctx context.Context, p *page.Page, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(TextColor)

	m := Model{
		page:    p,
		ctx:     ctx,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
	}

	for _, v := range p.Fields {
		in := fieldInput{view: v}
		switch {
		case v.IsSelect():
		case v.Kind == form.KindMessage:
			ta := textarea.New()
			ta.Placeholder = v.Placeholder
			ta.ShowLineNumbers = false
			ta.Prompt = ""
			ta.CharLimit = 2000
			ta.SetWidth(inputWidth - 2)
			ta.SetHeight(messageHeight)
			in.area = ta
			in.multi = true
		default:
			ti := textinput.New()
			ti.Placeholder = v.Placeholder
			ti.Prompt = ""
			ti.CharLimit = 256
			ti.Width = inputWidth - 4
			in.text = ti
		}
		m.inputs = append(m.inputs, in)
	}
	for _, opt := range opts {
		opt(&m)
	}
	if len(m.inputs) > 0 {
		m.inputs[0].focus()
	}
	return m
}

func (m Model) submitIndex() int { return len(m.inputs) }
func (m Model) clearIndex() int  { return len(m.inputs) + 1 }
func (m Model) positions() int   { return len(m.inputs) + 2 }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.jumpToContact {
			m.jumpToContact = false
			m.page.Form.ScrollToContact()
			m.syncScroll()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case deliveredMsg:
		if m.notice == noticeSending {
			m.notice = ""
		}
		m.page.Form.CompleteSubmit(msg.sub, msg.res, msg.err)
		m.lastResult, m.lastErr = msg.res, msg.err
		m.syncInputs()
		m.refresh()
		return m, nil

	case refreshMsg:
		if m.notice == noticeResetting && m.page.Form.ButtonState() == form.ButtonIdle {
			m.notice = ""
		}
		m.syncInputs()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.page.Form.ButtonState() != form.ButtonSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	// Cursor blink and other widget messages
	if m.focus < len(m.inputs) {
		in := &m.inputs[m.focus]
		var cmd tea.Cmd
		if in.multi {
			in.area, cmd = in.area.Update(msg)
		} else if !in.view.IsSelect() {
			in.text, cmd = in.text.Update(msg)
		}
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	width = ui.ClampWidth(width)
	m.width, m.height = width, height
	m.help.Width = width - 4

	vpHeight := height - 4 - (lipgloss.Height(m.help.View(m.keys)) + 1)
	if vpHeight < 5 {
		vpHeight = 5
	}
	if !m.ready {
		m.viewport = viewport.New(width-4, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width - 4
		m.viewport.Height = vpHeight
	}
	m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		if m.ready {
			m.resize(m.width, m.height)
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Contact):
		m.page.Form.ScrollToContact()
		m.syncScroll()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.clear()
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDn):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		cmd := m.moveFocus(1)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.moveFocus(-1)
		return m, cmd
	}

	pressed := key.Matches(msg, m.keys.Press) || msg.String() == " "
	switch {
	case m.focus == m.submitIndex():
		if pressed {
			return m.submit()
		}
		return m, nil
	case m.focus == m.clearIndex():
		if pressed {
			m.clear()
		}
		return m, nil
	}

	in := &m.inputs[m.focus]
	if in.view.IsSelect() {
		switch msg.String() {
		case "left":
			m.cycle(in, -1)
		case "right", " ":
			m.cycle(in, 1)
		case "enter":
			cmd := m.moveFocus(1)
			return m, cmd
		}
		return m, nil
	}
	if !in.multi && key.Matches(msg, m.keys.Press) {
		cmd := m.moveFocus(1)
		return m, cmd
	}
	cmd := m.typeInto(in, msg)
	return m, cmd
}

// typeInto forwards a key to the widget and raises an input event when the
// value changed.
func (m *Model) typeInto(in *fieldInput, msg tea.KeyMsg) tea.Cmd {
	before := in.view.Input.Value()
	var cmd tea.Cmd
	var after string
	if in.multi {
		in.area, cmd = in.area.Update(msg)
		after = in.area.Value()
	} else {
		in.text, cmd = in.text.Update(msg)
		after = in.text.Value()
	}
	if after != before {
		in.view.Input.SetValue(after)
		m.raise(m.page.Form.HandleInput(in.view.Name))
	}
	m.refresh()
	return cmd
}

// cycle moves a select to the next or previous option and raises a change event.
func (m *Model) cycle(in *fieldInput, delta int) {
	opts := in.view.Input.Options()
	if len(opts) == 0 {
		return
	}
	cur := 0
	for i, o := range opts {
		if o.Value == in.view.Input.Value() {
			cur = i
			break
		}
	}
	next := (cur + delta + len(opts)) % len(opts)
	if err := in.view.Input.Select(opts[next].Value); err != nil {
		m.raise(err)
		return
	}
	m.raise(m.page.Form.HandleChange(in.view.Name))
	m.refresh()
}

// moveFocus blurs the current position, raising a blur event for text
// fields, and focuses the next one.
func (m *Model) moveFocus(delta int) tea.Cmd {
	if m.focus < len(m.inputs) {
		in := &m.inputs[m.focus]
		in.blur()
		if !in.view.IsSelect() {
			m.raise(m.page.Form.HandleBlur(in.view.Name))
		}
	}
	m.focus = (m.focus + delta + m.positions()) % m.positions()
	cmd := m.focusCurrent()
	m.refresh()
	m.ensureVisible()
	return cmd
}

func (m *Model) focusCurrent() tea.Cmd {
	switch m.focus {
	case m.submitIndex():
		m.page.Submit.Focus()
		return nil
	case m.clearIndex():
		m.page.Clear.Focus()
		return nil
	default:
		return m.inputs[m.focus].focus()
	}
}

// submit starts a submission. Invalid forms move focus to the first failing
// field; valid ones are delivered by a command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	sub, res, err := m.page.Form.BeginSubmit()
	switch {
	case errors.Is(err, form.ErrSubmitInProgress):
		m.notice = noticeSending
		m.refresh()
		return m, nil
	case errors.Is(err, form.ErrSubmitDisabled):
		m.notice = noticeResetting
		m.refresh()
		return m, nil
	}
	if err != nil {
		m.raise(err)
		return m, nil
	}

	if sub == nil {
		m.notice = fmt.Sprintf("%d field(s) need attention", len(res.Failures))
		cmd := m.syncFocus()
		m.refresh()
		m.syncScroll()
		return m, cmd
	}

	m.notice = ""
	m.lastResult, m.lastErr = nil, nil
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, deliver(m.ctx, m.page.Form, sub))
}

func deliver(ctx context.Context, f *form.Form, sub *form.Submission) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Deliver(ctx, sub)
		return deliveredMsg{sub: sub, res: res, err: err}
	}
}

// syncFocus moves the widget focus to whatever the form focused.
func (m *Model) syncFocus() tea.Cmd {
	id := m.page.Doc.Focused()
	for i := range m.inputs {
		if m.inputs[i].view.Input.ID() != id {
			continue
		}
		if m.focus < len(m.inputs) {
			m.inputs[m.focus].blur()
		}
		m.focus = i
		return m.inputs[i].focus()
	}
	return nil
}

// syncScroll brings the element the form last scrolled to into view.
func (m *Model) syncScroll() {
	if !m.ready {
		return
	}
	id := m.page.Doc.LastScrolled()
	if id == page.ContactID {
		m.viewport.SetYOffset(m.contactLine)
		return
	}
	for i, in := range m.inputs {
		if in.view.Input.ID() == id && i < len(m.fieldLines) {
			m.viewport.SetYOffset(m.fieldLines[i])
			return
		}
	}
}

// ensureVisible scrolls just enough to show the focused position.
func (m *Model) ensureVisible() {
	if !m.ready {
		return
	}
	line := m.buttonLine
	if m.focus < len(m.fieldLines) {
		line = m.fieldLines[m.focus]
	}
	const span = 4
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line+span > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line + span - m.viewport.Height)
	}
}

// syncInputs copies dom values into the widgets after the form changed them,
// for example the reset that follows a successful delivery.
func (m *Model) syncInputs() {
	for i := range m.inputs {
		in := &m.inputs[i]
		if in.view.IsSelect() {
			continue
		}
		v := in.view.Input.Value()
		if in.multi {
			if in.area.Value() != v {
				in.area.SetValue(v)
			}
		} else if in.text.Value() != v {
			in.text.SetValue(v)
		}
	}
}

func (m *Model) clear() {
	m.page.Form.Clear()
	for i := range m.inputs {
		m.inputs[i].reset()
	}
	m.notice, m.lastResult, m.lastErr = "", nil, nil
	m.refresh()
}

func (m *Model) raise(err error) {
	if err == nil {
		return
	}
	logging.Warn("Form event failed", zap.Error(err))
	m.notice = err.Error()
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading…"
	}
	return RenderApplicationContainer(m.viewport.View(), m.help.View(m.keys), m.width)
}
