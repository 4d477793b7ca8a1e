package saf

import "errors"

// Sentinel errors for package saf.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Table errors
	ErrMalformedHeader = errors.New("malformed header")
	ErrRowLength       = errors.New("row length does not match header length")
	ErrEmptyTable      = errors.New("table has no header row")

	// File and directory errors
	ErrExpectedDirectory = errors.New("expected directory but got file")
	ErrItemExists        = errors.New("item directory already exists")
	ErrNameCollision     = errors.New("file name already used in item")

	// Configuration errors
	ErrInvalidThreshold = errors.New("split threshold must be greater than zero")

	// Manifest errors
	ErrNoManifest = errors.New("archive has no build manifest")
)
