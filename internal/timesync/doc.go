// Package timesync turns the tracer's absolute timestamps into offsets from
// the first event of a log.
//
// The tracer stamps each line with ktime seconds and nanoseconds. Only
// differences matter for the output (elapsed times and the ordering of the
// reconstruction pass), so every timestamp is rebased on the first line.
package timesync
