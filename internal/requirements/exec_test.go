package requirements

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCommand(t *testing.T) {
	t.Run("captures stdout", func(t *testing.T) {
		res := runCommand(context.Background(), commandSpec{
			Argv:    []string{"echo", "hello"},
			Timeout: 5 * time.Second,
		})
		require.True(t, res.Passed)
		require.Equal(t, "hello\n", res.Stdout)
	})

	t.Run("spawn failure is contained", func(t *testing.T) {
		res := runCommand(context.Background(), commandSpec{
			Argv:    []string{"/definitely/not/a/binary"},
			Timeout: 5 * time.Second,
		})
		require.False(t, res.Passed)
		require.Contains(t, res.Message, "failed to run command")
		require.Nil(t, res.ExitCode)
	})

	t.Run("signature found in stdout", func(t *testing.T) {
		res := runCommand(context.Background(), commandSpec{
			Argv:      []string{"echo", "BENCHMARK READY"},
			Timeout:   5 * time.Second,
			Signature: "BENCHMARK READY",
		})
		require.True(t, res.Passed)
	})

	t.Run("signature miss fails", func(t *testing.T) {
		res := runCommand(context.Background(), commandSpec{
			Argv:      []string{"echo", "something else"},
			Timeout:   5 * time.Second,
			Signature: "BENCHMARK READY",
		})
		require.False(t, res.Passed)
		require.Contains(t, res.Message, "signature not found")
	})
}

func TestCappedBuffer(t *testing.T) {
	t.Run("short writes pass through", func(t *testing.T) {
		b := newCappedBuffer(10)
		n, err := b.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, "hello", b.String())
	})

	t.Run("overflow is truncated with a marker", func(t *testing.T) {
		b := newCappedBuffer(5)
		_, err := b.Write([]byte("hello world"))
		require.NoError(t, err)
		require.Equal(t, "hello...", b.String())
	})

	t.Run("writes after the cap are discarded but counted", func(t *testing.T) {
		b := newCappedBuffer(5)
		_, _ = b.Write([]byte("12345"))
		n, err := b.Write([]byte("xxxx"))
		require.NoError(t, err)
		require.Equal(t, 4, n)
		require.Equal(t, "12345...", b.String())
	})
}

func TestSignatureScanner(t *testing.T) {
	t.Run("match within a single write", func(t *testing.T) {
		s := newSignatureScanner("READY")
		_, _ = s.Write([]byte("status: READY now"))
		require.True(t, s.Found())
	})

	t.Run("match spanning a chunk boundary", func(t *testing.T) {
		s := newSignatureScanner("BENCHMARK READY")
		_, _ = s.Write([]byte("...BENCHMARK RE"))
		require.False(t, s.Found())
		_, _ = s.Write([]byte("ADY..."))
		require.True(t, s.Found())
	})

	t.Run("byte-at-a-time writes still match", func(t *testing.T) {
		s := newSignatureScanner("abc")
		for _, c := range []byte("xxabcxx") {
			_, _ = s.Write([]byte{c})
		}
		require.True(t, s.Found())
	})

	t.Run("no match", func(t *testing.T) {
		s := newSignatureScanner("missing")
		_, _ = s.Write([]byte(strings.Repeat("filler ", 100)))
		require.False(t, s.Found())
	})
}
