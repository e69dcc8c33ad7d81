//go:build !pipedebug

// File: pipe/assert.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

// assertRefcountPositive is a no-op in release builds. See
// assert_debug.go; build with -tags pipedebug to catch double-closes at the
// point they happen instead of silently underflowing the refcount.
func assertRefcountPositive(n int, what string) {}
