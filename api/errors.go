// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the ringpipe library.

package api

import "fmt"

// Sentinel errors returned by the ring and pipe packages.
var (
	// ErrInvalidElemSize is returned by NewPipe when elemSize is zero.
	ErrInvalidElemSize = fmt.Errorf("pipe: element size must be non-zero")
	// ErrClosedHandle is returned by any operation performed through a
	// handle that has already been closed.
	ErrClosedHandle = fmt.Errorf("pipe: handle is closed")
	// ErrNilBuffer is returned by Push/Pop when given a nil slice.
	ErrNilBuffer = fmt.Errorf("pipe: buffer must not be nil")
)
