// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func AssertNoError(t testing.TB, err error) {
	t.Helper()
	require.NoError(t, err)
}

func AssertError(t testing.TB, err error) {
	t.Helper()
	require.Error(t, err)
}

func AssertEqual(t testing.TB, want, got any) {
	t.Helper()
	require.Equal(t, want, got)
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
