package markup

import (
	"fmt"
	"strconv"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <button>, etc.
	KindText                // Plain text node
	KindRaw                 // Raw HTML (dangerous)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Attrs holds element attributes.
type Attrs map[string]string

// Node is a single node of the render tree.
type Node struct {
	Kind     Kind
	Tag      string  // Element tag name (e.g., "div")
	Attrs    Attrs   // Attributes (KindElement only)
	Children []*Node // Child nodes (KindElement only)
	Key      string  // Reconciliation key for keyed sibling matching
	Text     string  // For KindText and KindRaw
	ID       string  // Stable node ID (assigned by the session)
}

// El creates an element node.
func El(tag string, attrs Attrs, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Textf creates a text node from a format string.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a raw HTML node. The content is emitted without escaping,
// so it must never include untrusted input.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// Keyed sets the reconciliation key on a node and returns it.
func Keyed(key string, n *Node) *Node {
	n.Key = key
	return n
}

// Common element constructors.

func Div(attrs Attrs, children ...*Node) *Node      { return El("div", attrs, children...) }
func Span(attrs Attrs, children ...*Node) *Node     { return El("span", attrs, children...) }
func P(attrs Attrs, children ...*Node) *Node        { return El("p", attrs, children...) }
func Ul(attrs Attrs, children ...*Node) *Node       { return El("ul", attrs, children...) }
func Li(attrs Attrs, children ...*Node) *Node       { return El("li", attrs, children...) }
func Button(attrs Attrs, children ...*Node) *Node   { return El("button", attrs, children...) }
func Input(attrs Attrs) *Node                       { return El("input", attrs) }
func Form(attrs Attrs, children ...*Node) *Node     { return El("form", attrs, children...) }
func Label(attrs Attrs, children ...*Node) *Node    { return El("label", attrs, children...) }
func Table(attrs Attrs, children ...*Node) *Node    { return El("table", attrs, children...) }
func Tr(attrs Attrs, children ...*Node) *Node       { return El("tr", attrs, children...) }
func Td(attrs Attrs, children ...*Node) *Node       { return El("td", attrs, children...) }
func Th(attrs Attrs, children ...*Node) *Node       { return El("th", attrs, children...) }
func Thead(attrs Attrs, children ...*Node) *Node    { return El("thead", attrs, children...) }
func Tbody(attrs Attrs, children ...*Node) *Node    { return El("tbody", attrs, children...) }
func H1(attrs Attrs, children ...*Node) *Node       { return El("h1", attrs, children...) }
func H2(attrs Attrs, children ...*Node) *Node       { return El("h2", attrs, children...) }
func Select(attrs Attrs, children ...*Node) *Node   { return El("select", attrs, children...) }
func Option(attrs Attrs, children ...*Node) *Node   { return El("option", attrs, children...) }
func Textarea(attrs Attrs, children ...*Node) *Node { return El("textarea", attrs, children...) }

// Clone returns a deep copy of the node tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind: n.Kind,
		Tag:  n.Tag,
		Key:  n.Key,
		Text: n.Text,
		ID:   n.ID,
	}
	if n.Attrs != nil {
		c.Attrs = make(Attrs, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports whether two trees are structurally identical, including
// node IDs, keys, attributes, and text content.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Key != b.Key || a.Text != b.Text || a.ID != b.ID {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for k, v := range a.Attrs {
		if bv, ok := b.Attrs[k]; !ok || bv != v {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// IDGen produces stable node IDs of the form n1, n2, ...
// Each session owns one generator; it is used only from the session's
// dispatch goroutine.
type IDGen struct {
	counter uint64
}

// NewIDGen creates a new ID generator.
func NewIDGen() *IDGen {
	return &IDGen{}
}

// Next returns the next node ID.
func (g *IDGen) Next() string {
	g.counter++
	return "n" + strconv.FormatUint(g.counter, 10)
}

// Current returns the number of IDs issued so far.
func (g *IDGen) Current() uint64 {
	return g.counter
}

// AssignIDs assigns fresh IDs to every node in the tree that lacks one.
func AssignIDs(n *Node, gen *IDGen) {
	if n == nil {
		return
	}
	if n.ID == "" {
		n.ID = gen.Next()
	}
	for _, child := range n.Children {
		AssignIDs(child, gen)
	}
}
