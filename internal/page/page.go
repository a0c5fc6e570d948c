package page

import (
	"fmt"

	"github.com/muurk/contactform/internal/clock"
	"github.com/muurk/contactform/internal/config"
	"github.com/muurk/contactform/internal/dom"
	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/submission"
)

// Element ids of the contact section.
const (
	ContactID = "contact"
	FormID    = "contact-form"
	SubmitID  = "submit"
	ClearID   = "clear"
)

// ErrorID returns the id of a field's error slot.
func ErrorID(field string) string {
	return field + "-error"
}

// FieldView describes one rendered field.
type FieldView struct {
	Name        string
	Label       string
	Placeholder string
	Kind        form.Kind
	Required    bool
	Input       *dom.Element
	Error       *dom.Element
}

// IsSelect reports whether the field is a select element.
func (v FieldView) IsSelect() bool {
	return v.Input.Tag() == dom.TagSelect
}

// Page is a built contact section.
type Page struct {
	Doc     *dom.Document
	Form    *form.Form
	Fields  []FieldView
	Contact *dom.Element
	Submit  *dom.Element
	Clear   *dom.Element

	// Client is nil when a custom sender was supplied.
	Client *submission.Client
}

type options struct {
	sender form.Sender
}

// Option customizes New.
type Option func(*options)

// WithSender replaces the submission client built from config.
func WithSender(s form.Sender) Option {
	return func(o *options) { o.sender = s }
}

type fieldDef struct {
	name        string
	label       string
	placeholder string
	kind        form.Kind
	tag         string
}

var layout = []fieldDef{
	{"name", "Full Name", "Your name", form.KindName, dom.TagInput},
	{"email", "Email", "you@example.com", form.KindEmail, dom.TagInput},
	{"phone", "Phone (optional)", "+2349159739012", form.KindPhone, dom.TagInput},
	{"service", "Service", "Select a service", form.KindService, dom.TagSelect},
	{"destination", "Destination", "Select a destination", form.KindDestination, dom.TagSelect},
	{"message", "Message", "How can we help?", form.KindMessage, dom.TagTextarea},
}

// New builds the contact section described by cfg.
func New(cfg *config.Config, sched clock.Scheduler, opts ...Option) (*Page, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	policy, err := cfg.PhonePolicy()
	if err != nil {
		return nil, err
	}

	p := &Page{Doc: dom.NewDocument()}
	if o.sender == nil {
		clientOpts := []submission.Option{}
		if cfg.Submission.Timeout > 0 {
			clientOpts = append(clientOpts, submission.WithTimeout(cfg.Submission.Timeout))
		}
		if cfg.Submission.UserAgent != "" {
			clientOpts = append(clientOpts, submission.WithUserAgent(cfg.Submission.UserAgent))
		}
		p.Client, err = submission.NewClient(cfg.Endpoints, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create submission client: %w", err)
		}
		o.sender = p.Client
	}

	if p.Contact, err = p.Doc.Create(nil, ContactID, dom.TagSection); err != nil {
		return nil, err
	}
	formEl, err := p.Doc.Create(p.Contact, FormID, dom.TagForm)
	if err != nil {
		return nil, err
	}

	formCfg := form.Config{
		ContactSection: p.Contact,
		PhonePolicy:    policy,
		ResetDelay:     cfg.Form.ResetDelay,
	}

	for _, def := range layout {
		view, err := p.buildField(formEl, def, cfg)
		if err != nil {
			return nil, err
		}
		p.Fields = append(p.Fields, view)
		formCfg.Fields = append(formCfg.Fields, form.FieldSpec{
			Name:      view.Name,
			Kind:      view.Kind,
			Required:  view.Required,
			Input:     view.Input,
			ErrorSlot: view.Error,
		})
	}

	if p.Submit, err = p.Doc.Create(formEl, SubmitID, dom.TagButton); err != nil {
		return nil, err
	}
	p.Submit.SetLabel(cfg.Form.SubmitLabel)
	p.Submit.AddClass("btn-primary")
	if p.Clear, err = p.Doc.Create(formEl, ClearID, dom.TagButton); err != nil {
		return nil, err
	}
	p.Clear.SetLabel("Clear")
	p.Clear.AddClass("btn-secondary")
	formCfg.SubmitButton = p.Submit

	if p.Form, err = form.New(formCfg, o.sender, sched); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) buildField(parent *dom.Element, def fieldDef, cfg *config.Config) (FieldView, error) {
	view := FieldView{
		Name:        def.name,
		Label:       def.label,
		Placeholder: def.placeholder,
		Kind:        def.kind,
	}

	switch def.kind {
	case form.KindPhone:
		view.Required = false
	case form.KindService:
		view.Required = cfg.Form.ServiceRequired
		if !view.Required {
			view.Label = "Service (optional)"
		}
	default:
		view.Required = true
	}

	var err error
	if view.Input, err = p.Doc.Create(parent, def.name, def.tag); err != nil {
		return view, err
	}
	if view.Error, err = p.Doc.Create(parent, ErrorID(def.name), dom.TagSpan); err != nil {
		return view, err
	}
	view.Error.AddClass("error-message")
	view.Error.SetHidden(true)

	switch def.kind {
	case form.KindService:
		view.Input.SetOptions(selectOptions(def.placeholder, cfg.Form.Services))
	case form.KindDestination:
		view.Input.SetOptions(selectOptions(def.placeholder, cfg.Form.Destinations))
	}
	return view, nil
}

func selectOptions(placeholder string, values []string) []dom.Option {
	opts := make([]dom.Option, 0, len(values)+1)
	opts = append(opts, dom.Option{Value: "", Label: placeholder})
	for _, v := range values {
		opts = append(opts, dom.Option{Value: v, Label: v})
	}
	return opts
}

// Field returns the named field view.
func (p *Page) Field(name string) (FieldView, bool) {
	for _, v := range p.Fields {
		if v.Name == name {
			return v, true
		}
	}
	return FieldView{}, false
}

// Fill sets field values the way a user would: text fields are typed into
// and blurred, selects are changed. Unknown fields and options are errors.
func (p *Page) Fill(values map[string]string) error {
	for name := range values {
		if _, ok := p.Field(name); !ok {
			return fmt.Errorf("%w: %q", form.ErrUnknownField, name)
		}
	}
	for _, v := range p.Fields {
		val, ok := values[v.Name]
		if !ok {
			continue
		}
		if v.IsSelect() {
			if err := v.Input.Select(val); err != nil {
				return err
			}
			if err := p.Form.HandleChange(v.Name); err != nil {
				return err
			}
			continue
		}
		v.Input.SetValue(val)
		if err := p.Form.HandleInput(v.Name); err != nil {
			return err
		}
		if err := p.Form.HandleBlur(v.Name); err != nil {
			return err
		}
	}
	return nil
}
