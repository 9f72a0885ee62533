package protocol

import (
	"encoding/json"
	"testing"

	"github.com/liveroom-dev/liveroom/pkg/diff"
	"github.com/liveroom-dev/liveroom/pkg/markup"
)

func TestEncodeRender(t *testing.T) {
	data, err := EncodeRender(3, "<div>x</div>")
	if err != nil {
		t.Fatalf("EncodeRender: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame["kind"] != KindRender {
		t.Errorf("kind = %v, want render", frame["kind"])
	}
	if frame["sequence"] != float64(3) {
		t.Errorf("sequence = %v, want 3", frame["sequence"])
	}
	if frame["markup"] != "<div>x</div>" {
		t.Errorf("markup = %v", frame["markup"])
	}
}

func TestEncodePatch(t *testing.T) {
	ops := []diff.Op{
		{Code: diff.OpSetText, ID: "n2", Value: "hi"},
		{Code: diff.OpMoveNode, ID: "n3", ParentID: "n1", Index: 2, Key: "row-1"},
	}
	data, err := EncodePatch(4, 5, ops)
	if err != nil {
		t.Fatalf("EncodePatch: %v", err)
	}

	var frame PatchFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Kind != KindPatch {
		t.Errorf("kind = %q, want patch", frame.Kind)
	}
	if frame.FromSequence != 4 || frame.ToSequence != 5 {
		t.Errorf("sequence %d->%d, want 4->5", frame.FromSequence, frame.ToSequence)
	}
	if len(frame.Ops) != 2 {
		t.Fatalf("ops = %d, want 2", len(frame.Ops))
	}
	if frame.Ops[0].Op != "set-text" || frame.Ops[0].Value != "hi" {
		t.Errorf("op[0] = %+v", frame.Ops[0])
	}
	if frame.Ops[1].Op != "move-node" || frame.Ops[1].ParentID != "n1" || frame.Ops[1].Key != "row-1" {
		t.Errorf("op[1] = %+v", frame.Ops[1])
	}
}

func TestEncodeNotice(t *testing.T) {
	data, err := EncodeNotice(map[string]any{"level": "error", "message": "boom"})
	if err != nil {
		t.Fatalf("EncodeNotice: %v", err)
	}
	var frame struct {
		Kind    string         `json:"kind"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Kind != KindNotice || frame.Payload["message"] != "boom" {
		t.Errorf("frame = %+v", frame)
	}
}

func TestNodeWireRoundTrip(t *testing.T) {
	n := markup.Div(markup.Attrs{"class": "x"},
		markup.Keyed("k", markup.Span(nil, markup.Text("hello"))),
		markup.Raw("<hr>"),
	)
	markup.AssignIDs(n, markup.NewIDGen())

	got := WireToNode(NodeToWire(n))
	if !markup.Equal(got, n) {
		t.Errorf("wire round trip changed the tree:\n got: %+v\nwant: %+v", got, n)
	}
}

func TestNodeToWireNil(t *testing.T) {
	if NodeToWire(nil) != nil {
		t.Error("NodeToWire(nil) should be nil")
	}
	if WireToNode(nil) != nil {
		t.Error("WireToNode(nil) should be nil")
	}
}
