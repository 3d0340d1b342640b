// Package output serializes the reconstructed exec incarnations.
//
// Three sinks consume the same entries:
//   - EntryWriter: the JSON database, one record per incarnation (or per
//     slice of its files when splitting is enabled)
//   - the raw event log: every accepted syscall as a tagged op
//   - SpanExporter: one OpenTelemetry span per incarnation
//
// Records are built by BuildRecords, a pure function of an entry, its
// parent and its pipe partners. Expression filtering is delegated to the
// attributes package.
package output
