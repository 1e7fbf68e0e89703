package domain

import (
	"fmt"
)

// Error codes for different failure scenarios
const (
	ErrInputLoad     = "INPUT_LOAD_ERROR"
	ErrInputSchema   = "INPUT_SCHEMA_ERROR"
	ErrConfiguration = "CONFIGURATION_ERROR"
	ErrArchive       = "ARCHIVE_ERROR"
	ErrReportWrite   = "REPORT_WRITE_ERROR"
)

// PipelineError is a failure surfaced to the invoker. Join-key mismatches are
// never errors; they propagate as absent fields in the joined rows.
type PipelineError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPipelineError creates a new PipelineError
func NewPipelineError(code, message, path string) *PipelineError {
	return &PipelineError{Code: code, Message: message, Path: path}
}

// SchemaError reports a required column missing from an input table.
type SchemaError struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %q is missing required column %q", e.Table, e.Column)
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(table, column string) *SchemaError {
	return &SchemaError{Table: table, Column: column}
}
