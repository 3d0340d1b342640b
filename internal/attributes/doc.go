// Package attributes evaluates expr-lang expressions against exec
// incarnations.
//
// Expressions see one entry through these variables:
//
//	pid, index, elapsed, exit   numbers
//	binary, cwd, interpreter    strings
//	argv, files                 lists of strings
//	cmdline                     argv joined with spaces
//
// Three consumers:
//   - Filter: a boolean predicate selecting the entries written out
//   - Evaluator: custom span attributes for exported entries
//   - TraceIDFromString: turns a user supplied trace id into a valid one
//
// Invalid trace IDs are hashed with SHA-256 to produce valid IDs.
package attributes
