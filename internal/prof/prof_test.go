package prof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.pprof"),
		Mem:   filepath.Join(dir, "mem.pprof"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	s, err := Start(opts)
	require.NoError(t, err)
	require.NoError(t, s.Stop())
	for _, p := range []string{opts.CPU, opts.Mem, opts.Trace} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.NotZero(t, info.Size(), p)
	}
}

func TestStartFailsCleanly(t *testing.T) {
	dir := t.TempDir()
	_, err := Start(Options{CPU: filepath.Join(dir, "cpu.pprof"), Trace: filepath.Join(dir, "missing", "trace.out")})
	require.Error(t, err)

	// CPU profiling stopped, a new start is allowed
	s, err := Start(Options{CPU: filepath.Join(dir, "cpu2.pprof")})
	require.NoError(t, err)
	require.NoError(t, s.Stop())

	var nilSession *Session
	require.NoError(t, nilSession.Stop())
}
