package diff

import (
	"sort"

	"github.com/liveroom-dev/liveroom/pkg/markup"
)

// Diff compares two render trees and returns the ops that transform prev
// into next. Node IDs are copied from prev to next for matched nodes;
// inserted and replacement subtrees get fresh IDs from gen.
func Diff(prev, next *markup.Node, gen *markup.IDGen) []Op {
	var ops []Op
	diffNode(prev, next, gen, &ops)
	return ops
}

func diffNode(prev, next *markup.Node, gen *markup.IDGen, ops *[]Op) {
	// Both nil - nothing to do
	if prev == nil && next == nil {
		return
	}

	// Node added (handled by parent via OpInsertNode)
	if prev == nil {
		return
	}

	// Node removed
	if next == nil {
		*ops = append(*ops, Op{Code: OpRemoveNode, ID: prev.ID})
		return
	}

	// Different kinds - replace
	if prev.Kind != next.Kind {
		replace(prev, next, gen, ops)
		return
	}

	switch prev.Kind {
	case markup.KindText:
		next.ID = prev.ID
		if prev.Text != next.Text {
			*ops = append(*ops, Op{Code: OpSetText, ID: prev.ID, Value: next.Text})
		}
	case markup.KindRaw:
		// Raw HTML is opaque; any change replaces the node.
		if prev.Text != next.Text {
			replace(prev, next, gen, ops)
		} else {
			next.ID = prev.ID
		}
	case markup.KindElement:
		if prev.Tag != next.Tag {
			replace(prev, next, gen, ops)
			return
		}
		next.ID = prev.ID
		diffAttrs(prev, next, ops)
		diffChildren(prev, gen, ops, prev.Children, next.Children)
	}
}

// replace emits a whole-subtree replacement. The replacement subtree gets
// fresh IDs so the client never sees a stale ID reattached to new content.
func replace(prev, next *markup.Node, gen *markup.IDGen, ops *[]Op) {
	markup.AssignIDs(next, gen)
	*ops = append(*ops, Op{Code: OpReplace, ID: prev.ID, Node: next})
}

// diffAttrs compares attributes and emits set/remove ops. Keys are visited
// in sorted order so the same pair of trees always yields the same ops.
func diffAttrs(prev, next *markup.Node, ops *[]Op) {
	keys := make([]string, 0, len(prev.Attrs)+len(next.Attrs))
	for k := range prev.Attrs {
		keys = append(keys, k)
	}
	for k := range next.Attrs {
		if _, inPrev := prev.Attrs[k]; !inPrev {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		prevVal, inPrev := prev.Attrs[k]
		nextVal, inNext := next.Attrs[k]
		switch {
		case !inNext:
			*ops = append(*ops, Op{Code: OpRemoveAttr, ID: prev.ID, Key: k})
		case !inPrev || prevVal != nextVal:
			*ops = append(*ops, Op{Code: OpSetAttr, ID: prev.ID, Key: k, Value: nextVal})
		}
	}
}

// diffChildren reconciles the child lists of a matched element pair.
func diffChildren(parent *markup.Node, gen *markup.IDGen, ops *[]Op, prev, next []*markup.Node) {
	if hasKeys(prev) || hasKeys(next) {
		diffKeyedChildren(parent, gen, ops, prev, next)
	} else {
		diffUnkeyedChildren(parent, gen, ops, prev, next)
	}
}

// diffUnkeyedChildren matches children positionally.
func diffUnkeyedChildren(parent *markup.Node, gen *markup.IDGen, ops *[]Op, prev, next []*markup.Node) {
	maxLen := len(prev)
	if len(next) > maxLen {
		maxLen = len(next)
	}

	for i := 0; i < maxLen; i++ {
		var prevChild, nextChild *markup.Node
		if i < len(prev) {
			prevChild = prev[i]
		}
		if i < len(next) {
			nextChild = next[i]
		}

		if prevChild == nil && nextChild != nil {
			markup.AssignIDs(nextChild, gen)
			*ops = append(*ops, Op{Code: OpInsertNode, ParentID: parent.ID, Index: i, Node: nextChild})
		} else {
			diffNode(prevChild, nextChild, gen, ops)
		}
	}
}

// diffKeyedChildren matches children by key so reorders become moves.
//
// A working copy of the child list is simulated while diffing: a move is
// emitted only when the node is actually out of place at the point the op
// would be applied, which keeps left-to-right application exact.
func diffKeyedChildren(parent *markup.Node, gen *markup.IDGen, ops *[]Op, prev, next []*markup.Node) {
	prevByKey := make(map[string]*markup.Node)
	for _, pc := range prev {
		if pc.Key != "" {
			prevByKey[pc.Key] = pc
		}
	}

	// Match next children to prev children by key.
	matched := make(map[*markup.Node]*markup.Node, len(next)) // next -> prev
	used := make(map[*markup.Node]bool, len(prev))
	for _, nc := range next {
		if nc.Key == "" {
			continue
		}
		if pc, ok := prevByKey[nc.Key]; ok && !used[pc] {
			matched[nc] = pc
			used[pc] = true
		}
	}

	// Unkeyed siblings in a keyed list pair up positionally, in order of
	// appearance, so a stable unkeyed child does not churn through a
	// remove/insert on every diff.
	var unkeyedPrev []*markup.Node
	for _, pc := range prev {
		if pc.Key == "" {
			unkeyedPrev = append(unkeyedPrev, pc)
		}
	}
	ui := 0
	for _, nc := range next {
		if nc.Key != "" {
			continue
		}
		if ui < len(unkeyedPrev) {
			matched[nc] = unkeyedPrev[ui]
			used[unkeyedPrev[ui]] = true
			ui++
		}
	}

	// Remove unmatched prev children first so the working list holds only
	// survivors.
	working := make([]*markup.Node, 0, len(prev))
	for _, pc := range prev {
		if used[pc] {
			working = append(working, pc)
		} else {
			*ops = append(*ops, Op{Code: OpRemoveNode, ID: pc.ID})
		}
	}

	for i, nc := range next {
		if pc := matched[nc]; pc != nil {
			cur := indexOf(working, pc)
			if cur != i {
				*ops = append(*ops, Op{Code: OpMoveNode, ID: pc.ID, ParentID: parent.ID, Index: i, Key: pc.Key})
				working = append(working[:cur], working[cur+1:]...)
				working = insertAt(working, i, pc)
			}
			diffNode(pc, nc, gen, ops)
		} else {
			markup.AssignIDs(nc, gen)
			*ops = append(*ops, Op{Code: OpInsertNode, ParentID: parent.ID, Index: i, Node: nc})
			working = insertAt(working, i, nc)
		}
	}
}

func indexOf(list []*markup.Node, n *markup.Node) int {
	for i, c := range list {
		if c == n {
			return i
		}
	}
	return -1
}

func insertAt(list []*markup.Node, i int, n *markup.Node) []*markup.Node {
	if i >= len(list) {
		return append(list, n)
	}
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = n
	return list
}

// hasKeys returns true if any child carries a reconciliation key.
func hasKeys(children []*markup.Node) bool {
	for _, child := range children {
		if child.Key != "" {
			return true
		}
	}
	return false
}
