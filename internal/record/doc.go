// Package record defines the values that flow between the per-process state
// machine, the pipe reconstruction pass and the serializer.
package record
