// Package metrics provides the in-process atomic counters surfaced through
// the root package's snapshot API.
package metrics
