package stack

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureTrace() []byte { return debug.Stack() }

func TestClean(t *testing.T) {
	out := string(Clean(captureTrace()))

	require.Contains(t, out, "goroutine")
	require.Contains(t, out, "captureTrace")
	require.NotContains(t, out, "runtime/debug.Stack")
}

func TestClean_SkipPrefix(t *testing.T) {
	out := string(Clean(captureTrace(), "github.com/codewandler/troupe-go/internal/stack.captureTrace"))

	require.NotContains(t, out, "captureTrace")
	require.Contains(t, out, "TestClean_SkipPrefix")
}

func TestClean_Unparseable(t *testing.T) {
	in := []byte("not a stack trace")
	require.Equal(t, in, Clean(in))
}

func TestClean_KeepsFileAndLine(t *testing.T) {
	out := string(Clean(captureTrace()))

	var found bool
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "stack_test.go:") {
			found = true
			break
		}
	}
	require.True(t, found, "cleaned trace should keep file:line info:\n%s", out)
}
