package runlock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_WritesPid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	defer lock.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
}

func TestAcquire_ReleaseRemovesLockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Reacquirable after release
	lock, err = Acquire(path)
	require.NoError(t, err)
	assert.NoError(t, lock.Release())
}

func TestAcquire_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "serve.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	assert.NoError(t, lock.Release())
}

func TestRelease_NilLockIsNoop(t *testing.T) {
	var lock *Lock
	assert.NoError(t, lock.Release())
}
