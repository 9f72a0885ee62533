// Package live implements the server-driven component session.
//
// A Session owns one application component: its state, the last rendered
// snapshot, and the lifecycle created → mounted → active ⇄ closing → closed. All state access happens on the session's dispatch goroutine,
// which executes actions strictly one at a time in arrival order
// (single-flight). Each successful action runs the render/diff/broadcast
// cycle; sessions for different rooms run fully concurrently.
package live
