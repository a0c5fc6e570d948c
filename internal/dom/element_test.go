package dom

import "testing"

func TestCreateAndGet(t *testing.T) {
	d := NewDocument()
	form, err := d.Create(nil, "contact-form", TagForm)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	name, err := d.Create(form, "name", TagInput)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if d.Get("name") != name {
		t.Error("Get(name) did not return the created element")
	}
	if d.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
	if kids := form.Children(); len(kids) != 1 || kids[0] != name {
		t.Errorf("form children = %v, want [name]", kids)
	}

	if _, err := d.Create(form, "name", TagInput); err == nil {
		t.Error("duplicate id should fail")
	}
	if _, err := d.Create(form, "", TagInput); err == nil {
		t.Error("empty id should fail")
	}
}

func TestClasses(t *testing.T) {
	d := NewDocument()
	el, _ := d.Create(nil, "email", TagInput)

	el.AddClass("error")
	el.AddClass("active")
	if !el.HasClass("error") {
		t.Error("HasClass(error) = false")
	}
	if got := el.ClassName(); got != "active error" {
		t.Errorf("ClassName() = %q, want %q", got, "active error")
	}

	el.RemoveClass("error")
	el.RemoveClass("never-added")
	if el.HasClass("error") {
		t.Error("HasClass(error) = true after remove")
	}
}

func TestStyles(t *testing.T) {
	d := NewDocument()
	btn, _ := d.Create(nil, "submit", TagButton)

	btn.SetStyle("background", "#10b981")
	if got := btn.Style("background"); got != "#10b981" {
		t.Errorf("Style() = %q", got)
	}
	btn.SetStyle("background", "")
	if got := btn.Style("background"); got != "" {
		t.Errorf("Style() after clear = %q, want empty", got)
	}
}

func TestSelectOptions(t *testing.T) {
	d := NewDocument()
	sel, _ := d.Create(nil, "destination", TagSelect)
	sel.SetOptions([]Option{{"", "Select a destination"}, {"Canada", "Canada"}, {"UK", "United Kingdom"}})

	if sel.Value() != "" {
		t.Errorf("initial value = %q, want placeholder", sel.Value())
	}
	if err := sel.Select("Canada"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.Value() != "Canada" {
		t.Errorf("Value() = %q, want Canada", sel.Value())
	}
	if err := sel.Select("Mars"); err == nil {
		t.Error("Select(Mars) should fail")
	}
}

func TestFocusAndScroll(t *testing.T) {
	d := NewDocument()
	a, _ := d.Create(nil, "a", TagInput)
	b, _ := d.Create(nil, "b", TagInput)

	if d.Focused() != "" || d.LastScrolled() != "" {
		t.Fatal("new document should have no focus or scroll")
	}

	a.ScrollIntoView()
	b.Focus()
	if d.Focused() != "b" {
		t.Errorf("Focused() = %q, want b", d.Focused())
	}
	if d.LastScrolled() != "a" || d.ScrollCount() != 1 {
		t.Errorf("LastScrolled() = %q count=%d", d.LastScrolled(), d.ScrollCount())
	}
}
