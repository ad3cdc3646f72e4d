package service

import "errors"

var (
	ErrUnknownEventType   = errors.New("unknown event type")
	ErrEmptyBatch         = errors.New("batch has no events")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrLoginRequired      = errors.New("login required")
	ErrFileNotSpecified   = errors.New("file not specified")
	ErrFileNotFound       = errors.New("file not found")
	ErrPathOutsideBase    = errors.New("path outside base directory")
)
