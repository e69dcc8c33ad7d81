// File: pipe/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pipe provides a bounded, thread-safe, multi-producer/
// multi-consumer byte-granular FIFO queue.
//
// A pipe transports fixed-size records between concurrent goroutines: some
// push records in, others block waiting to pop them out. The same
// underlying pipe is reached through three handle kinds — Bidirectional,
// Producer, and Consumer — each independently refcounted, so the pipe's
// backing buffer is released for garbage collection only once every handle
// of every kind has been closed.
//
// The storage layer (internal/ring) is a dynamically resizing circular byte
// buffer; this package adds the mutex/condition-variable protocol, the
// handle/refcount lifecycle, and the diagnostics surface on top of it.
package pipe
