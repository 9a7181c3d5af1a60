// Package audit defines the structured audit event model and the sink
// implementations the guard dispatches into. Richer diagnostic detail
// (which specific check failed) lives only here; the errors returned to
// callers stay collapsed.
package audit
