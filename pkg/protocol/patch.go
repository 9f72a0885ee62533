package protocol

import (
	"encoding/json"

	"github.com/liveroom-dev/liveroom/pkg/diff"
	"github.com/liveroom-dev/liveroom/pkg/markup"
)

// WireOp is the JSON form of a single patch operation.
type WireOp struct {
	Op       string    `json:"op"`
	ID       string    `json:"id,omitempty"`
	ParentID string    `json:"parent,omitempty"`
	Index    int       `json:"index,omitempty"`
	Key      string    `json:"key,omitempty"`
	Value    string    `json:"value,omitempty"`
	Node     *WireNode `json:"node,omitempty"`
}

// WireNode is the JSON form of a render-tree subtree, carried by insert and
// replace operations.
type WireNode struct {
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*WireNode       `json:"children,omitempty"`
	Key      string            `json:"key,omitempty"`
	Text     string            `json:"text,omitempty"`
	Raw      bool              `json:"raw,omitempty"`
	ID       string            `json:"id,omitempty"`
}

// NodeToWire converts a render-tree node to its wire form.
func NodeToWire(n *markup.Node) *WireNode {
	if n == nil {
		return nil
	}
	w := &WireNode{
		Tag:   n.Tag,
		Attrs: n.Attrs,
		Key:   n.Key,
		Text:  n.Text,
		Raw:   n.Kind == markup.KindRaw,
		ID:    n.ID,
	}
	for _, child := range n.Children {
		w.Children = append(w.Children, NodeToWire(child))
	}
	return w
}

// WireToNode converts a wire node back to a render-tree node.
func WireToNode(w *WireNode) *markup.Node {
	if w == nil {
		return nil
	}
	n := &markup.Node{
		Tag:   w.Tag,
		Attrs: w.Attrs,
		Key:   w.Key,
		Text:  w.Text,
		ID:    w.ID,
	}
	switch {
	case w.Raw:
		n.Kind = markup.KindRaw
	case w.Tag == "":
		n.Kind = markup.KindText
	default:
		n.Kind = markup.KindElement
	}
	for _, child := range w.Children {
		n.Children = append(n.Children, WireToNode(child))
	}
	return n
}

// OpsToWire converts diff ops to their wire form.
func OpsToWire(ops []diff.Op) []WireOp {
	wire := make([]WireOp, len(ops))
	for i, op := range ops {
		wire[i] = WireOp{
			Op:       op.Code.String(),
			ID:       op.ID,
			ParentID: op.ParentID,
			Index:    op.Index,
			Key:      op.Key,
			Value:    op.Value,
			Node:     NodeToWire(op.Node),
		}
	}
	return wire
}

// EncodePatch serializes a patch frame stepping fromSeq to toSeq.
func EncodePatch(fromSeq, toSeq uint64, ops []diff.Op) ([]byte, error) {
	return json.Marshal(&PatchFrame{
		Kind:         KindPatch,
		FromSequence: fromSeq,
		ToSequence:   toSeq,
		Ops:          OpsToWire(ops),
	})
}
