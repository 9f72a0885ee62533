// Package markup defines the server-side render tree.
//
// A Render function produces a *Node tree from component state. Trees are
// immutable once handed to the session: each render builds a fresh tree, and
// the previous one is kept only as the diffing baseline. Element nodes carry
// a stable node ID assigned by the session's generator; IDs survive diffs for
// matched nodes so patch operations can address them.
package markup
