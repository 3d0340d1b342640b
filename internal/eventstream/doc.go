// Package eventstream reads a tracer log and feeds per-process event
// buffers to a BufferHandler.
//
//	line ──► tracelog.ParseLine ──► Cont/Cont_end merge ──► procbuffer.Manager
//	                                                              │
//	          Exit: (pid, line+margin) ──► FIFO ──► due? ─────────┤
//	                                                              ▼
//	                                        sort by time ──► BufferHandler
//
// A process's buffer is not flushed on its Exit event but a fixed number of
// lines later, because events of an exited process can still show up out of
// order from other CPUs. Whatever is left at the end of the log is flushed
// in pid order.
package eventstream
