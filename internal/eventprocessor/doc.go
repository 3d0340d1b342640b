// Package eventprocessor runs the per-process state machine that turns a
// process's sorted events into exec incarnations.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│   eventstream (flushed buffer)          │
//	└─────────────────┬───────────────────────┘
//	                  │
//	                  ▼
//	┌─────────────────────────────────────────┐
//	│   Collector                             │  ← commits or recovers
//	└─────────────────┬───────────────────────┘
//	                  │
//	                  ▼
//	┌─────────────────────────────────────────┐
//	│   Processor.Process                     │  ← routes by tag
//	└─────────┬───────────────────────────────┘
//	          │
//	          ├──→ New_proc ─────→ reassembler (PI, PP, CW, A[n])
//	          │                     new incarnation + Exec syscall
//	          │
//	          ├──→ SchedFork ────→ child list, parent link, Fork syscall
//	          ├──→ SysClone ─────→ one event lookahead for SchedFork
//	          │
//	          ├──→ Close/Pipe/Dup → syscalls for the pipe pass
//	          │
//	          ├──→ Open ─────────→ FN/FO strings, file map, stat
//	          ├──→ Rename/Link ──→ source read, destination write
//	          ├──→ Symlink ──────→ resolved read, link write
//	          │
//	          └──→ Exit ─────────→ Exit syscall at the flush boundary
//
// A malformed sequence never aborts the run. Process returns a Result whose
// Err is set; the Collector then calls Result.Recover, which keeps a single
// placeholder entry and a synthetic exit for the pid.
package eventprocessor
