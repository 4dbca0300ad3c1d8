//go:build linux

package microdump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestWriteMicrodump_StderrConvenience(t *testing.T) {
	out := openOutput(t)
	saved, err := unix.Dup(unix.Stderr)
	require.NoError(t, err)
	require.NoError(t, unix.Dup3(int(out.Fd()), unix.Stderr, 0))
	defer func() {
		_ = unix.Dup3(saved, unix.Stderr, 0)
		_ = unix.Close(saved)
	}()

	ok := WriteMicrodump(testPid, &CrashContext{Tid: testTid}, ContextSize, fooMappings())

	require.NoError(t, unix.Dup3(saved, unix.Stderr, 0))
	require.True(t, ok)
	assert.Contains(t, readBack(t, out), fooLine)
}
