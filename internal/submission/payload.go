package submission

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// Field is one name/value pair of a payload.
type Field struct {
	Name  string
	Value string
}

// Payload is the ordered set of form values sent to an endpoint.
type Payload struct {
	fields []Field
}

// NewPayload returns an empty payload.
func NewPayload() *Payload {
	return &Payload{}
}

// Add appends a field. Duplicate names are kept, like repeated form inputs.
func (p *Payload) Add(name, value string) *Payload {
	p.fields = append(p.fields, Field{Name: name, Value: value})
	return p
}

// Get returns the first value for name.
func (p *Payload) Get(name string) (string, bool) {
	for _, f := range p.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the fields in insertion order.
func (p *Payload) Fields() []Field {
	return append([]Field(nil), p.fields...)
}

// Len returns the number of fields.
func (p *Payload) Len() int {
	return len(p.fields)
}

// Encoded is a payload rendered to a request body. It is produced once per
// submission so every endpoint receives the same bytes.
type Encoded struct {
	Body        []byte
	ContentType string
}

// Encode renders the payload as multipart/form-data.
func (p *Payload) Encode() (*Encoded, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range p.fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, fmt.Errorf("failed to write field %q: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &Encoded{Body: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}
