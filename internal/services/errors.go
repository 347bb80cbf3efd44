package services

import "errors"

var (
	// ErrNotFound is returned when the referenced entity does not exist or
	// is soft-deleted.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidVersionGroup is returned for a malformed or foreign
	// version-group reference, e.g. pinning a file to a group it does not
	// belong to.
	ErrInvalidVersionGroup = errors.New("invalid version group reference")

	// ErrFileTypeNotAllowed is returned when the upload extension is
	// outside the allow-list.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")

	// ErrFileTooLarge is returned when the payload exceeds the configured
	// size ceiling.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)
