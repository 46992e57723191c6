package pidfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireAndRelease(t *testing.T) {
	// Arrange
	p := pidfile.New(filepath.Join(t.TempDir(), "outpost.pid"))

	// Act
	require.NoError(t, p.Acquire())
	pid, err := p.Running()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.Error(t, p.Acquire(), "second acquire while we are alive")

	require.NoError(t, p.Release())
	_, err = p.Running()
	assert.ErrorIs(t, err, pidfile.ErrNotRunning)
}

func TestPIDFile_StaleFileIsReplaced(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "outpost.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))
	p := pidfile.New(path)

	// Act
	err := p.Acquire()

	// Assert
	require.NoError(t, err)
	pid, err := p.Running()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}
