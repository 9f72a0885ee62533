package markup

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// voidElements are HTML elements that never have closing tags.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// RenderString serializes a node tree to HTML.
func RenderString(n *Node) (string, error) {
	var b strings.Builder
	if err := Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render streams a node tree as HTML to the given writer.
// Element nodes with an assigned ID emit a data-live-id attribute, and
// identified text and raw nodes are preceded by an <!--lr:id--> marker
// comment, so the client can correlate patch operations with DOM nodes.
// Attributes are written in sorted order to keep output deterministic.
func Render(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindText:
		if n.ID != "" {
			if _, err := io.WriteString(w, "<!--lr:"+n.ID+"-->"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, escapeHTML(n.Text))
		return err
	case KindRaw:
		if n.ID != "" {
			if _, err := io.WriteString(w, "<!--lr:"+n.ID+"-->"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, n.Text)
		return err
	case KindElement:
		return renderElement(w, n)
	default:
		return fmt.Errorf("markup: unknown node kind %d", n.Kind)
	}
}

func renderElement(w io.Writer, n *Node) error {
	if _, err := io.WriteString(w, "<"+n.Tag); err != nil {
		return err
	}
	if n.ID != "" {
		if _, err := io.WriteString(w, ` data-live-id="`+escapeAttr(n.ID)+`"`); err != nil {
			return err
		}
	}
	if len(n.Attrs) > 0 {
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := io.WriteString(w, " "+k+`="`+escapeAttr(n.Attrs[k])+`"`); err != nil {
				return err
			}
		}
	}
	if voidElements[n.Tag] {
		_, err := io.WriteString(w, ">")
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := Render(w, child); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+n.Tag+">")
	return err
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
func escapeAttr(s string) string {
	return escapeHTML(s)
}
