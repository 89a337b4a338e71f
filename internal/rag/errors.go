package rag

import "errors"

var (
	// ErrUnknownSource indicates a requested data source name is not one
	// of the known partition kinds. The selector drops such entries with
	// a warning; it never fails a request over one bad entry.
	ErrUnknownSource = errors.New("unknown data source")

	// ErrGeneration indicates the text-generation capability failed or
	// timed out. This is fatal to the request and surfaces to the caller.
	ErrGeneration = errors.New("generation failed")
)
