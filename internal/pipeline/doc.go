// Package pipeline wires the passes of one run together:
//
//	trace log -> eventstream.Ingestor -> eventprocessor.Collector
//	                                         |            |
//	                                     syscalls      entries, ops
//	                                         v            |
//	                               pipemap.Reconstructor  |
//	                                         |            v
//	                                      PipeMap -> output writers
//
// Each pass runs in its own span when a tracer is configured. Output files
// are written under a temporary name and renamed once complete, so a
// cancelled or failed run leaves no partial output behind.
package pipeline
