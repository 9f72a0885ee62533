package protocol

import "encoding/json"

// Outbound frame kinds.
const (
	KindRender = "render"
	KindPatch  = "patch"
	KindNotice = "notice"
)

// RenderFrame is a full render establishing a fresh client baseline.
type RenderFrame struct {
	Kind     string `json:"kind"`
	Sequence uint64 `json:"sequence"`
	Markup   string `json:"markup"`
}

// PatchFrame carries the ops transforming snapshot FromSequence into
// ToSequence. ToSequence is always FromSequence+1.
type PatchFrame struct {
	Kind         string   `json:"kind"`
	FromSequence uint64   `json:"from_sequence"`
	ToSequence   uint64   `json:"to_sequence"`
	Ops          []WireOp `json:"ops"`
}

// NoticeFrame is a one-shot out-of-band client effect, decoupled from the
// markup patch stream so it is never lost on a no-op render.
type NoticeFrame struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// EncodeRender serializes a full render frame.
func EncodeRender(sequence uint64, markup string) ([]byte, error) {
	return json.Marshal(&RenderFrame{Kind: KindRender, Sequence: sequence, Markup: markup})
}

// EncodeNotice serializes a notice frame.
func EncodeNotice(payload any) ([]byte, error) {
	return json.Marshal(&NoticeFrame{Kind: KindNotice, Payload: payload})
}
