package common

import (
	"fmt"
	"runtime"

	"github.com/devlights/gomy/output"
)

// Assert panics with msg when condition is false, dumping all goroutine
// stacks first so a failure deep inside the nested-loop join driver leaves
// a trace of which scan it was on. Only meant for invariants that must
// never trip in correct code (see exec's debug-only cnt==sumRecords check),
// never for validating user input.
func Assert(condition bool, msg string, a ...interface{}) {
	if !condition {
		DumpGoroutines()
		panic(fmt.Sprintf(msg, a...))
	}
}

// DumpGoroutines writes every goroutine's stack trace to stdout.
//
// REFERENCES
//   - https://pkg.go.dev/runtime#Stack
func DumpGoroutines() {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			output.Stdoutl("=== stack-all   ", string(buf[:n]))
			return
		}
		buf = make([]byte, 2*len(buf))
	}
}
