// Package protocol defines the JSON wire format between server and client.
//
// Inbound messages are action events: {"action": "...", "args": {...}}.
// Outbound messages carry a "kind" discriminator:
//
//	{"kind":"render","sequence":N,"markup":"<...>"}
//	{"kind":"patch","from_sequence":N,"to_sequence":N+1,"ops":[...]}
//	{"kind":"notice","payload":...}
//
// A full render establishes a fresh client baseline at the given sequence;
// patches only ever step one sequence forward from the snapshot they were
// diffed against.
package protocol
