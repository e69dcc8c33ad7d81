//go:build !pipedebug

// File: internal/ring/invariants.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

// checkInvariants is a no-op in release builds. See invariants_debug.go for
// the assertions it stands in for; build with -tags pipedebug to enable them.
func checkInvariants(b *Buffer) {}
