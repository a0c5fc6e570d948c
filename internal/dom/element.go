package dom

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Tag names used by the contact page.
const (
	TagForm     = "form"
	TagSection  = "section"
	TagInput    = "input"
	TagTextarea = "textarea"
	TagSelect   = "select"
	TagButton   = "button"
	TagSpan     = "span"
)

// Option is one entry of a select element. An empty Value is the
// "please choose" placeholder.
type Option struct {
	Value string
	Label string
}

// Document owns a tree of elements addressed by id.
type Document struct {
	mu       sync.RWMutex
	root     *Element
	byID     map[string]*Element
	focused  string
	scrolled []string
}

// Element is a node in a Document.
type Element struct {
	doc      *Document
	id       string
	tag      string
	value    string
	text     string
	hidden   bool
	disabled bool
	classes  map[string]struct{}
	styles   map[string]string
	options  []Option
	children []*Element
}

// NewDocument returns an empty document with a body root.
func NewDocument() *Document {
	d := &Document{byID: make(map[string]*Element)}
	d.root = d.newElement("body", TagSection)
	return d
}

func (d *Document) newElement(id, tag string) *Element {
	return &Element{
		doc:     d,
		id:      id,
		tag:     tag,
		classes: make(map[string]struct{}),
		styles:  make(map[string]string),
	}
}

// Root returns the body element.
func (d *Document) Root() *Element {
	return d.root
}

// Create makes a new element and appends it to parent (the root if nil).
// Ids must be unique within the document.
func (d *Document) Create(parent *Element, id, tag string) (*Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id == "" {
		return nil, fmt.Errorf("element id cannot be empty")
	}
	if _, exists := d.byID[id]; exists {
		return nil, fmt.Errorf("duplicate element id %q", id)
	}
	if parent == nil {
		parent = d.root
	}
	el := d.newElement(id, tag)
	parent.children = append(parent.children, el)
	d.byID[id] = el
	return el, nil
}

// Get returns the element with the given id, or nil.
func (d *Document) Get(id string) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byID[id]
}

// Focused returns the id of the focused element, or "".
func (d *Document) Focused() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.focused
}

// LastScrolled returns the id of the element most recently scrolled into view.
func (d *Document) LastScrolled() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.scrolled) == 0 {
		return ""
	}
	return d.scrolled[len(d.scrolled)-1]
}

// ScrollCount returns how many scrollIntoView calls have been made.
func (d *Document) ScrollCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.scrolled)
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// Tag returns the element tag name.
func (e *Element) Tag() string { return e.tag }

// Children returns a copy of the element's children.
func (e *Element) Children() []*Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return append([]*Element(nil), e.children...)
}

// Value returns the current value of an input, textarea or select.
func (e *Element) Value() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.value
}

// SetValue replaces the value.
func (e *Element) SetValue(v string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.value = v
}

// Text returns the text content.
func (e *Element) Text() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.text
}

// SetText replaces the text content.
func (e *Element) SetText(s string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.text = s
}

// Label is the text content of a button.
func (e *Element) Label() string { return e.Text() }

// SetLabel sets the text content of a button.
func (e *Element) SetLabel(s string) { e.SetText(s) }

// Hidden reports whether the element is hidden.
func (e *Element) Hidden() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.hidden
}

// SetHidden shows or hides the element.
func (e *Element) SetHidden(h bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.hidden = h
}

// Disabled reports whether the element is disabled.
func (e *Element) Disabled() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.disabled
}

// SetDisabled enables or disables the element.
func (e *Element) SetDisabled(d bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.disabled = d
}

// AddClass adds a CSS class.
func (e *Element) AddClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.classes[name] = struct{}{}
}

// RemoveClass removes a CSS class if present.
func (e *Element) RemoveClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	delete(e.classes, name)
}

// HasClass reports whether the class is present.
func (e *Element) HasClass(name string) bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	_, ok := e.classes[name]
	return ok
}

// ClassName returns the classes as a sorted, space separated string.
func (e *Element) ClassName() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	names := make([]string, 0, len(e.classes))
	for c := range e.classes {
		names = append(names, c)
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// Style returns an inline style property, or "".
func (e *Element) Style(prop string) string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.styles[prop]
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if value == "" {
		delete(e.styles, prop)
		return
	}
	e.styles[prop] = value
}

// Options returns a copy of a select element's options.
func (e *Element) Options() []Option {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return append([]Option(nil), e.options...)
}

// SetOptions replaces a select element's options and resets its value to
// the first option.
func (e *Element) SetOptions(opts []Option) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.options = append([]Option(nil), opts...)
	e.value = ""
	if len(e.options) > 0 {
		e.value = e.options[0].Value
	}
}

// Select sets a select element's value. The value must be one of its options.
func (e *Element) Select(value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, o := range e.options {
		if o.Value == value {
			e.value = value
			return nil
		}
	}
	return fmt.Errorf("select %q has no option %q", e.id, value)
}

// Focus makes this the document's focused element.
func (e *Element) Focus() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.focused = e.id
}

// ScrollIntoView records that the element was brought into view.
func (e *Element) ScrollIntoView() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.scrolled = append(e.doc.scrolled, e.id)
}
