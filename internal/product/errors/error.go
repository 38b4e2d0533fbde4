// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	// ErrValidation means the create input was incomplete or malformed.
	ErrValidation = errors.New("invalid product input")
	// ErrMissingID means a delete was requested without an id.
	ErrMissingID = errors.New("product id is required")
	// ErrProductNotFound means no record exists for the requested id.
	ErrProductNotFound = errors.New("product not found")

	ErrImageUpload  = errors.New("failed to upload product image")
	ErrRecordWrite  = errors.New("failed to write product record")
	ErrRecordList   = errors.New("failed to list product records")
	ErrRecordLookup = errors.New("failed to look up product record")
	ErrRecordDelete = errors.New("failed to delete product record")
)
