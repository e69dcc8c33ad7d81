//go:build pipedebug

// File: internal/ring/invariants_debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

// checkInvariants asserts every structural invariant of a Buffer. It is
// invoked at the entry and exit of every mutating primitive when built with
// -tags pipedebug; release builds omit the calls entirely (see
// invariants.go) but preserve all observable semantics. Reading this
// function doubles as reading the buffer's contract.
func checkInvariants(b *Buffer) {
	if b.elemSize == 0 {
		panic("ring: elemSize must be non-zero")
	}
	if b.capacity < b.minCap {
		panic("ring: capacity dropped below minCap")
	}
	if b.elemCount > b.capacity {
		panic("ring: elemCount exceeds capacity")
	}

	bufend := b.bufend()
	if b.begin > bufend || b.end > bufend {
		panic("ring: begin/end out of bounds")
	}
	if b.begin == bufend {
		panic("ring: begin was not wrapped back to zero")
	}

	if b.wrapsAround() {
		live := (bufend - b.begin) + b.end
		if live != b.elemCount*b.elemSize {
			panic("ring: wrapped live length disagrees with elemCount")
		}
	} else {
		live := b.end - b.begin
		if live != b.elemCount*b.elemSize {
			panic("ring: nowrap live length disagrees with elemCount")
		}
	}
}
