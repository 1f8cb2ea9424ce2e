// Package repository defines error types that are reused across the layout
// store and its cache.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrCorruptLayout is returned when a stored row cannot be decoded.
// Handlers should translate this into an HTTP 500 response; the layout has
// to be re-submitted to repair it.
var ErrCorruptLayout = errors.New("stored layout is corrupt")
