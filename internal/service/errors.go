package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
)

// PDFFailureMessage is shown to users whenever a booking document cannot be
// produced.
const PDFFailureMessage = "Failed to generate PDF. Please try again."
