package submission

import (
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

func TestPayloadOrderAndLookup(t *testing.T) {
	p := NewPayload().Add("name", "Jo").Add("destination", "Canada").Add("name", "ignored")

	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if v, ok := p.Get("name"); !ok || v != "Jo" {
		t.Errorf("Get(name) = %q, %v", v, ok)
	}
	if _, ok := p.Get("phone"); ok {
		t.Error("Get(phone) should be absent")
	}
	fields := p.Fields()
	if fields[1].Name != "destination" {
		t.Errorf("field order = %+v", fields)
	}
}

func TestPayloadEncode(t *testing.T) {
	p := NewPayload().Add("name", "Jo").Add("message", "Line one\nLine two")
	enc, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(enc.ContentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("ContentType = %q", enc.ContentType)
	}
	form, err := multipart.NewReader(strings.NewReader(string(enc.Body)), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm() error = %v", err)
	}
	if form.Value["message"][0] != "Line one\nLine two" {
		t.Errorf("message = %q", form.Value["message"][0])
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID("sub"), NewID("sub")
	if a == b {
		t.Error("NewID returned duplicate ids")
	}
	if !strings.HasPrefix(a, "sub_") || len(a) != len("sub_")+26 {
		t.Errorf("NewID() = %q, want sub_ followed by 26 ulid chars", a)
	}
	if a > b {
		t.Errorf("ids should sort by creation: %q > %q", a, b)
	}
}
