package visual

import (
	"errors"
	"strings"
	"testing"
)

func TestDocument_AttachDetach(t *testing.T) {
	doc := NewDocument("div")
	a := doc.CreateNode("p")
	b := doc.CreateNode("p")

	if err := doc.Attach(doc.Root, a); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := doc.Attach(doc.Root, b); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := doc.Attach(doc.Root, a); !errors.Is(err, ErrAttached) {
		t.Errorf("second Attach() error = %v, want ErrAttached", err)
	}
	if len(doc.Root.Children) != 2 || doc.Attaches != 2 {
		t.Fatalf("children = %d attaches = %d", len(doc.Root.Children), doc.Attaches)
	}

	if err := doc.Detach(b, a); !errors.Is(err, ErrNotChild) {
		t.Errorf("Detach() from wrong parent error = %v", err)
	}
	if err := doc.Detach(doc.Root, a); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}
	if len(doc.Root.Children) != 1 || doc.Root.Children[0] != b || a.(*Element).Parent != nil {
		t.Errorf("unexpected tree after detach")
	}
	if err := doc.Detach(doc.Root, a); !errors.Is(err, ErrNotChild) {
		t.Errorf("repeated Detach() error = %v", err)
	}
	// detached node can be attached again
	if err := doc.Attach(b, a); err != nil {
		t.Errorf("re-Attach() error = %v", err)
	}

	if err := doc.Attach(doc.Root, "stranger"); !errors.Is(err, ErrForeignNode) {
		t.Errorf("Attach() of foreign node error = %v", err)
	}
}

func TestDocument_SetProperty(t *testing.T) {
	doc := NewDocument("div")
	n := doc.CreateNode("span")
	doc.SetProperty(n, PropClass, "a b")
	doc.SetProperty(n, Style("opacity"), "0.5")
	doc.SetProperty(n, PropText, "text")
	doc.SetProperty(n, "data-x", "1")
	doc.SetProperty(n, "data-x", "")
	doc.SetProperty("stranger", PropText, "ignored")

	el := n.(*Element)
	if !el.HasClass("b") || el.HasClass("c") {
		t.Errorf("classes = %q", el.Attrs[PropClass])
	}
	if el.Styles["opacity"] != "0.5" || el.Text != "text" {
		t.Errorf("element = %+v", el)
	}
	if _, ok := el.Attrs["data-x"]; ok {
		t.Error("empty value must remove attribute")
	}
}

func TestWriteHTML(t *testing.T) {
	doc := NewDocument("div")
	doc.SetProperty(doc.Root, PropClass, "bv-page")
	doc.SetProperty(doc.Root, Style("width"), "10px")
	doc.SetProperty(doc.Root, Style("height"), "20px")
	span := doc.CreateNode("span")
	doc.SetProperty(span, PropText, "a < b")
	if err := doc.Attach(doc.Root, span); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := WriteHTML(&sb, doc.Root); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	want := `<div class="bv-page" style="height: 20px; width: 10px;"><span>a &lt; b</span></div>`
	if sb.String() != want {
		t.Errorf("WriteHTML() = %s, want %s", sb.String(), want)
	}

	sb.Reset()
	if err := WriteDocument(&sb, "Title", ".bv-page{}", doc.Root); err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	for _, s := range []string{"<!DOCTYPE html>", "<title>Title</title>", "<style>.bv-page{}</style>", want} {
		if !strings.Contains(sb.String(), s) {
			t.Errorf("document does not contain %q:\n%s", s, sb.String())
		}
	}
}

func TestWriteText(t *testing.T) {
	doc := NewDocument("div")
	for _, s := range []string{"one", "two"} {
		line := doc.CreateNode("div")
		doc.SetProperty(line, PropClass, "bv-line")
		word := doc.CreateNode("span")
		doc.SetProperty(word, PropText, s)
		_ = doc.Attach(line, word)
		_ = doc.Attach(doc.Root, line)
	}
	bg := doc.CreateNode("div")
	doc.SetProperty(bg, PropClass, "bv-background")
	doc.SetProperty(bg, PropText, "hidden")
	_ = doc.Attach(doc.Root, bg)

	var sb strings.Builder
	if err := WriteText(&sb, doc.Root, "bv-line"); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "one\ntwo\n" {
		t.Errorf("WriteText() = %q", sb.String())
	}
}
