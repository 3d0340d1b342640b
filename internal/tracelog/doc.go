// Package tracelog decodes the line format written by the kernel execution
// tracer.
//
// Each event line looks like:
//
//	0: <pid>,<cpu>,<sec>,<nsec>!<Tag>|<payload>
//	0: <pid>,<cpu>,<sec>,<nsec>!<Tag>[<index>]<chunk>
//
// ParseLine turns a line into an Event. Header problems are fatal for a
// whole run and wrap ErrBadHeader.
//
// Payloads of syscall events are comma separated key=value lists. The
// Parse*Args functions decode them into typed argument structs; each one
// only accepts the tag it was written for.
//
// Cursor walks a process's sorted event list with one token of pushback,
// which is what the state machine needs for lookahead such as
// SysClone followed by SchedFork.
package tracelog
