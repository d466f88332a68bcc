package models

import "errors"

// Error constants for application, document and user operations
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrMediaNotFound       = errors.New("media not found")
	ErrInvalidID           = errors.New("invalid ID")
	ErrValidationFailed    = errors.New("validation failed")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbidden           = errors.New("insufficient role for operation")
	ErrUsernameExists      = errors.New("username already exists")
	ErrEmptyFile           = errors.New("empty file")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidExportField  = errors.New("invalid export field")
	ErrInvalidDocumentType = errors.New("invalid document type")
)
