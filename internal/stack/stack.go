// Package stack trims panic stack traces down to the frames a user can act
// on: runtime plumbing and recovery machinery are removed before the trace is
// logged or attached to an event.
package stack

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/DataDog/gostackparse"
)

// Clean parses a debug.Stack() trace and drops runtime frames plus any frame
// whose function matches one of the skip prefixes. The input is returned
// unchanged when it cannot be parsed.
func Clean(stack []byte, skip ...string) []byte {
	goros, errs := gostackparse.Parse(bytes.NewReader(stack))
	if len(errs) > 0 || len(goros) == 0 {
		return stack
	}

	g := goros[0]
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "goroutine %d [%s]\n", g.ID, g.State)

	for _, frame := range g.Stack {
		if skipFrame(frame.Func, skip) {
			continue
		}
		fmt.Fprintf(buf, "%s\n\t%s:%d\n", frame.Func, frame.File, frame.Line)
	}

	return buf.Bytes()
}

func skipFrame(fn string, skip []string) bool {
	if strings.HasPrefix(fn, "runtime.") || strings.HasPrefix(fn, "runtime/debug.") {
		return true
	}
	for _, prefix := range skip {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	return false
}
