// Package pipemap replays the fd-related syscalls of a whole trace to infer
// which exec incarnations were connected through pipes.
//
// The pass keeps three structures:
//
//	FdTable   fd -> {read end, write end, cloexec, group}, plus its sharers
//	Topology  parent -> children, child -> parent; pid 0 adopts orphans
//	PipeMap   writer incarnation -> reader incarnations
//
// Tables are owned by the Reconstructor. A table is only shared between
// pids forked with CLONE_FILES and is deep-copied as soon as one of the
// sharers execs.
package pipemap
