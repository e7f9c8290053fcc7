package mmap

import (
	"io"
	"os"
	"sync/atomic"
)

// Mapping represents a read-write memory-mapped file.
// It owns the underlying byte slice and the open file handle, and is
// responsible for unmapping and closing them.
type Mapping struct {
	file   *os.File
	data   []byte
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// OpenFile opens path for read-write mapping, creating it if it does not
// exist. If the file is smaller than minSize, it is extended with Truncate
// before being mapped; an existing larger file is mapped at its current
// size. minSize of 0 maps whatever size the file already has.
func OpenFile(path string, minSize int) (*Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size < 0 {
		f.Close()
		return nil, ErrInvalidSize
	}
	if int(size) < minSize {
		if err := f.Truncate(int64(minSize)); err != nil {
			f.Close()
			return nil, err
		}
		size = int64(minSize)
	}

	if size == 0 {
		return &Mapping{file: f, data: nil, size: 0}, nil
	}

	data, unmapFunc, err := osMap(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Mapping{
		file:  f,
		data:  data,
		size:  int(size),
		unmap: unmapFunc,
	}, nil
}

// Grow extends the backing file to newSize and remaps it. The caller must
// ensure no other goroutine is reading or writing Bytes() while Grow runs.
// newSize smaller than the current size is a no-op.
func (m *Mapping) Grow(newSize int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if newSize < 0 {
		return ErrInvalidSize
	}
	if newSize <= m.size {
		return nil
	}

	if m.data != nil {
		if err := m.unmap(m.data); err != nil {
			return err
		}
		m.data = nil
	}

	if err := m.file.Truncate(int64(newSize)); err != nil {
		return err
	}

	data, unmapFunc, err := osMap(m.file, newSize)
	if err != nil {
		return err
	}

	m.data = data
	m.unmap = unmapFunc
	m.size = newSize
	return nil
}

// Sync flushes the byte range [offset, offset+length) back to the
// underlying file. When async is true (the default usage), the flush is
// requested but the call does not wait for the bytes to reach disk
// (MS_ASYNC on Unix). When async is false, Sync blocks until the range is
// durable (MS_SYNC on Unix, FlushFileBuffers on Windows).
func (m *Mapping) Sync(offset, length int, async bool) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil || length == 0 {
		return nil
	}
	if offset < 0 || length < 0 || offset+length > len(m.data) {
		return ErrOutOfBounds
	}
	return osSync(m.data[offset:offset+length], m.file, async)
}

// Close unmaps the memory and closes the file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	var unmapErr error
	if m.unmap != nil && m.data != nil {
		unmapErr = m.unmap(m.data)
	}
	closeErr := m.file.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called, and is
// invalidated by any call to Grow.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the current size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
