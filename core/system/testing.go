package system

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestSystem creates a system bound to the test lifetime: discarded
// logs, the test context as parent, and a clean Stop enforced via
// t.Cleanup.
func NewTestSystem(t *testing.T, opts Options) *System {
	t.Helper()

	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Context == nil {
		opts.Context = t.Context()
	}

	sys := New(opts)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		require.NoError(t, sys.Stop(ctx))
	})

	return sys
}
