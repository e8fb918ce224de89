// Package importer drives the bulk spreadsheet import of book records.
//
// A [Pipeline] owns exactly one batch slot. Loading a file clears the slot,
// decodes the first sheet, normalizes every row and validates it against
// the catalog rules. Only a fully valid file fills the slot and enables
// submission; any row error discards the whole file.
//
// # States
//
//	idle -> file_loading -> row_validation_failed | ready_to_submit
//	ready_to_submit -> submitting -> submit_succeeded
//	                               | submit_partial_failure
//	                               | submit_failed
//
// A transport failure (network error, non-JSON answer, error status with at
// most an error message)
// keeps the batch so it can be submitted again. A server rejection, a
// partial failure and a success all consume the batch; the user starts
// over from file selection.
//
// # Error Handling
//
// Technical errors are mapped to Spanish user messages with support codes
// by [MapError]:
//
//   - FILE001-FILE007: file errors (size, format, corrupt workbook, empty sheet)
//   - UPL001-UPL005: batch and request errors (no batch, busy, in flight, cancelled)
//   - NET001-NET002: catalog server errors
//   - RATE001: throttling
package importer
