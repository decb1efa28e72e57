package apperr

import "errors"

var (
	// ErrConfiguration is returned when a required setting is missing or
	// invalid. It is fatal and reported before any I/O takes place.
	ErrConfiguration = errors.New("configuration error")
	// ErrFileNotFound is returned when the local file to upload does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrCollaborator wraps transport and authorization failures of the
	// object store. No record is written when it occurs.
	ErrCollaborator = errors.New("object store error")
	// ErrUserInput is returned for malformed menu choices and numbers.
	ErrUserInput = errors.New("invalid input")
	// ErrRecordNotFound is returned when a key has no stored record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInfected is returned when the virus scanner flags a file.
	ErrInfected = errors.New("file is infected")
)
