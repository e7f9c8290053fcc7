package mmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile_CreatesAndMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 4096, m.Size())
	assert.Len(t, m.Bytes(), 4096)
}

func TestOpenFile_ExistingLargerFileKeepsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 8192)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m2, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m2.Close()

	assert.Equal(t, 8192, m2.Size())
}

func TestMapping_WriteReadAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m.Close()

	copy(m.Bytes()[100:], []byte("hello"))

	buf := make([]byte, 5)
	n, err := m.ReadAt(buf, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestMapping_Grow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m.Close()

	copy(m.Bytes()[0:], []byte("preserved"))

	require.NoError(t, m.Grow(8192))
	assert.Equal(t, 8192, m.Size())
	assert.Len(t, m.Bytes(), 8192)
	assert.Equal(t, "preserved", string(m.Bytes()[0:9]))

	// Shrinking is a no-op.
	require.NoError(t, m.Grow(100))
	assert.Equal(t, 8192, m.Size())
}

func TestMapping_SyncAsyncAndBlocking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m.Close()

	copy(m.Bytes()[0:], []byte("durable"))

	assert.NoError(t, m.Sync(0, 16, true))
	assert.NoError(t, m.Sync(0, 16, false))
}

func TestMapping_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
}

func TestMapping_OperationsAfterCloseFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, m.Grow(8192), ErrClosed)
	assert.ErrorIs(t, m.Sync(0, 1, true), ErrClosed)
	assert.ErrorIs(t, m.Advise(AccessSequential), ErrClosed)
}

func TestMapping_ReadAtOutOfBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	m, err := OpenFile(path, 16)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.ReadAt(make([]byte, 1), -1)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = m.ReadAt(make([]byte, 1), 100)
	assert.Error(t, err)
}
