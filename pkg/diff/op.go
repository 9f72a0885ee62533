package diff

import "github.com/liveroom-dev/liveroom/pkg/markup"

// OpCode is the type of patch operation.
type OpCode uint8

const (
	OpSetText    OpCode = iota + 1 // Update text content
	OpSetAttr                      // Set/update attribute
	OpRemoveAttr                   // Remove attribute
	OpInsertNode                   // Insert new node
	OpRemoveNode                   // Remove node
	OpMoveNode                     // Move node to new position
	OpReplace                      // Replace node entirely
)

// String returns the wire name of the OpCode.
func (c OpCode) String() string {
	switch c {
	case OpSetText:
		return "set-text"
	case OpSetAttr:
		return "set-attr"
	case OpRemoveAttr:
		return "remove-attr"
	case OpInsertNode:
		return "insert-node"
	case OpRemoveNode:
		return "remove-node"
	case OpMoveNode:
		return "move-node"
	case OpReplace:
		return "replace-node"
	default:
		return "unknown"
	}
}

// Op is a single edit operation.
//
// Targets are addressed by stable node ID. Insert and move carry the parent
// ID and the child index in the parent's child list at the time the op is
// applied (ops are interpreted strictly left to right).
type Op struct {
	Code     OpCode
	ID       string       // Target node ID
	ParentID string       // Parent node ID (insert/move)
	Index    int          // Child index (insert/move)
	Key      string       // Attribute name (set-attr/remove-attr) or node key (move)
	Value    string       // New text or attribute value
	Node     *markup.Node // Inserted or replacement subtree
}
