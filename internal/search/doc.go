// Package search implements the incremental text search engine used by
// the modal core: line-scanning literal and regex matching, direction
// and wraparound handling, independent multi-cursor fan-out, offset
// policy cursor placement, match highlighting, and delimiter-based
// selection growth.
//
// Scans walk a logical ring of document lines with a wrapped-once flag.
// A scan is not restartable midway, but starting a fresh scan is cheap,
// so callers simply scan again.
package search
