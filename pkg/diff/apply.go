package diff

import (
	"errors"
	"fmt"

	"github.com/liveroom-dev/liveroom/pkg/markup"
)

// ErrNodeNotFound is returned when an op targets an ID absent from the tree.
var ErrNodeNotFound = errors.New("diff: node not found")

// Apply interprets ops left to right against the given tree and returns the
// resulting root. The input tree is mutated; pass a Clone to keep the
// original. Inserted and replacement subtrees are cloned from the ops, so an
// op slice can be applied more than once.
func Apply(root *markup.Node, ops []Op) (*markup.Node, error) {
	var err error
	for _, op := range ops {
		root, err = applyOp(root, op)
		if err != nil {
			return nil, fmt.Errorf("diff: apply %s %s: %w", op.Code, op.ID, err)
		}
	}
	return root, nil
}

func applyOp(root *markup.Node, op Op) (*markup.Node, error) {
	switch op.Code {
	case OpSetText:
		n := find(root, op.ID)
		if n == nil {
			return nil, ErrNodeNotFound
		}
		n.Text = op.Value

	case OpSetAttr:
		n := find(root, op.ID)
		if n == nil {
			return nil, ErrNodeNotFound
		}
		if n.Attrs == nil {
			n.Attrs = make(markup.Attrs)
		}
		n.Attrs[op.Key] = op.Value

	case OpRemoveAttr:
		n := find(root, op.ID)
		if n == nil {
			return nil, ErrNodeNotFound
		}
		delete(n.Attrs, op.Key)

	case OpRemoveNode:
		if root != nil && root.ID == op.ID {
			return nil, errors.New("cannot remove root node")
		}
		parent, idx := findParent(root, op.ID)
		if parent == nil {
			return nil, ErrNodeNotFound
		}
		parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)

	case OpReplace:
		repl := op.Node.Clone()
		if root != nil && root.ID == op.ID {
			return repl, nil
		}
		parent, idx := findParent(root, op.ID)
		if parent == nil {
			return nil, ErrNodeNotFound
		}
		parent.Children[idx] = repl

	case OpInsertNode:
		parent := find(root, op.ParentID)
		if parent == nil {
			return nil, ErrNodeNotFound
		}
		parent.Children = insertAt(parent.Children, clamp(op.Index, len(parent.Children)), op.Node.Clone())

	case OpMoveNode:
		oldParent, idx := findParent(root, op.ID)
		if oldParent == nil {
			return nil, ErrNodeNotFound
		}
		n := oldParent.Children[idx]
		oldParent.Children = append(oldParent.Children[:idx], oldParent.Children[idx+1:]...)
		newParent := find(root, op.ParentID)
		if newParent == nil {
			return nil, ErrNodeNotFound
		}
		newParent.Children = insertAt(newParent.Children, clamp(op.Index, len(newParent.Children)), n)

	default:
		return nil, fmt.Errorf("unknown op code %d", op.Code)
	}
	return root, nil
}

func clamp(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// find returns the node with the given ID, searching depth-first.
func find(n *markup.Node, id string) *markup.Node {
	if n == nil || id == "" {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := find(child, id); found != nil {
			return found
		}
	}
	return nil
}

// findParent returns the parent of the node with the given ID and the
// node's index in the parent's child list.
func findParent(n *markup.Node, id string) (*markup.Node, int) {
	if n == nil {
		return nil, -1
	}
	for i, child := range n.Children {
		if child.ID == id {
			return n, i
		}
		if p, idx := findParent(child, id); p != nil {
			return p, idx
		}
	}
	return nil, -1
}
