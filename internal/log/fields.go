// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID   = "run_id"
	FieldRunUUID = "run_uuid"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldCommand   = "command"

	// Dataset fields
	FieldColumn  = "column"
	FieldRows    = "rows"
	FieldColumns = "columns"

	// Path fields
	FieldPath     = "path"
	FieldOutDir   = "outdir"
	FieldManifest = "manifest"
)
