// Package testing collects small assertion helpers for this module's own
// _test.go files; the current test files do not import it and call
// t.Fatalf directly. It is not a replacement for the standard
// testing package -- it just trims the boilerplate around the most
// common failure shape: "expected X, got Y".
package testing

import "testing"

// Assert fails t with msg unless cond holds.
func Assert(t *testing.T, cond bool, msg string, a ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(msg, a...)
	}
}

// AssertNoError fails t if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertEqual fails t unless got == want.
func AssertEqual(t *testing.T, got, want interface{}, what string) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: got %v, want %v", what, got, want)
	}
}
