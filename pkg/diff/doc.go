// Package diff computes ordered patch operations between two render trees.
//
// Diff is deterministic: the same pair of trees always yields the same ops.
// Sibling matching is keyed when any sibling carries a key, positional
// otherwise; keyed reorders produce move operations instead of replaces.
// Applying the ops left-to-right against the previous tree reproduces the
// next tree exactly; Apply implements that interpretation and is the
// reference for client behavior.
package diff
