// Package errors provides structured error types for binlayout.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, schema type name, and cause chain.
//
// The phases map onto the three failure families of the schema compiler:
//
//	PhaseType    type model violations (widths, packed field kinds, names)
//	PhaseLayout  declared/computed size mismatch, container selection
//	PhaseCursor  index out of range on a checked cursor
//
// PhaseAccess, PhaseParse and PhaseImport cover string truncation rejection,
// schema file loading and WIT import.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindSizeMismatch).
//		Path("Vertex").
//		Type("record").
//		Detail("declared %d octets, fields occupy %d", 16, 14).
//		Build()
//
// Type and layout errors are fatal to schema compilation; cursor errors are
// ordinary validation failures. All errors support errors.Is against the
// exported sentinels:
//
//	if errors.Is(err, errors.ErrIndexOutOfRange) { ... }
package errors
