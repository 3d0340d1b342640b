// Package reassembler rebuilds values the tracer had to spread over several
// trace lines.
//
// Long strings (paths, cwd, rename and link operands) come in two shapes:
//
//	PP|/usr/bin/cc            short value, PP_end is optional
//	PP_end|
//
//	PP[0]/very/long/...       chunked value, indices contiguous from 0
//	PP[1].../tail
//	PP_end|                   mandatory terminator
//
// State machine (ReadLongString):
//
//	┌─────────┐
//	│  Start  │──── other tag ───► absent, nothing consumed
//	└────┬────┘
//	     │ TAG|v            TAG[0]
//	     ▼                    │
//	┌──────────┐              ▼
//	│  Value   │        ┌───────────┐
//	└────┬─────┘        │ Chunking  │ ◄── TAG[n+1]
//	     │              └─────┬─────┘
//	     │ TAG_end?           │ TAG_end
//	     ▼                    ▼
//	┌──────────┐        ┌──────────┐
//	│ Complete │        │ Complete │
//	└──────────┘        └──────────┘
//
// Any other event while chunking, or an index that is not the next one,
// makes the value malformed.
//
// Argument vectors use A[n] lines terminated by End_of_args. There the index
// is the argument number: a repeated index appends to the current argument,
// the next index starts a new one.
package reassembler
