package markup

import (
	"strings"
	"testing"
)

func TestRenderBasic(t *testing.T) {
	n := Div(Attrs{"class": "box"}, Span(nil, Text("hello")))
	got, err := RenderString(n)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := `<div class="box"><span>hello</span></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderSortsAttrs(t *testing.T) {
	n := El("a", Attrs{"href": "/x", "class": "link", "title": "t"})
	got, err := RenderString(n)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := `<a class="link" href="/x" title="t"></a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEscapesText(t *testing.T) {
	got, err := RenderString(Div(nil, Text(`<script>alert("x")</script>`)))
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("unescaped markup in output: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("expected escaped script tag, got %q", got)
	}
}

func TestRenderEscapesAttrs(t *testing.T) {
	got, err := RenderString(Div(Attrs{"title": `a"b`}))
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := `<div title="a&quot;b"></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderVoidElement(t *testing.T) {
	got, err := RenderString(Input(Attrs{"type": "text"}))
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := `<input type="text">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderRawPassesThrough(t *testing.T) {
	got, err := RenderString(Div(nil, Raw("<b>bold</b>")))
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := "<div><b>bold</b></div>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEmitsNodeIDs(t *testing.T) {
	n := Div(nil, Text("hi"))
	AssignIDs(n, NewIDGen())
	got, err := RenderString(n)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := `<div data-live-id="n1"><!--lr:n2-->hi</div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderNilIsEmpty(t *testing.T) {
	got, err := RenderString(nil)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
