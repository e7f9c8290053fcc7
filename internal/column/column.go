package column

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/SSYernar/Low-Latency-Time-Series-Database-TSDB-for-Market-Data/internal/conv"
	"github.com/SSYernar/Low-Latency-Time-Series-Database-TSDB-for-Market-Data/internal/mmap"
)

// ErrInvalidFormat indicates a column file's on-disk layout does not match
// what this package expects: a file shorter than the 8-byte header, or a
// header declaring a committed_count beyond the file's allocated capacity.
// Callers can match it with errors.Is to distinguish it from other open
// failures (permission errors, missing directories, and the like).
var ErrInvalidFormat = errors.New("column: invalid file format")

// headerSize is the size in bytes of the committed_count header that
// precedes the slot data in every column file.
const headerSize = 8

// ChunkBytes is the unit of growth: each grow step adds roughly one chunk's
// worth of slots to the file.
const ChunkBytes = 4096

// Column is a single append-only array of fixed-width slots, backed by a
// memory-mapped file. All methods are safe for concurrent use: Append calls
// are expected to be serialized by the caller (the database's single
// background writer), while Read/Count/ReadSlice may run concurrently with
// Append and with each other.
type Column struct {
	slotSize int

	mapping *mmap.Mapping

	growMu   sync.Mutex
	capacity atomic.Uint64 // number of slots currently allocated
	count    atomic.Uint64 // number of committed slots

	// onGrow, if set, is called with the new capacity in bytes after every
	// successful grow. It runs while growMu is held, so it must not call
	// back into the column.
	onGrow func(newCapacityBytes uint64)
}

// OnGrow registers a callback invoked after every successful grow with the
// column's new total capacity in bytes (header included). It replaces any
// previously registered callback.
func (c *Column) OnGrow(fn func(newCapacityBytes uint64)) {
	c.onGrow = fn
}

// Open opens or creates the column file at path with the given slot size in
// bytes. Existing files are recovered from their stored committed_count;
// new files start empty with capacity for one growth chunk.
func Open(path string, slotSize int) (*Column, error) {
	if slotSize <= 0 {
		return nil, fmt.Errorf("column: invalid slot size %d", slotSize)
	}

	initialSlots := chunkSlots(slotSize)
	minSize := headerSize + initialSlots*slotSize

	// mmap.OpenFile pads any file smaller than minSize up to minSize, which
	// would silently erase the one on-disk signal of a truncated header. A
	// pre-existing, non-empty file shorter than the header must fail before
	// that padding happens.
	if fi, statErr := os.Stat(path); statErr == nil && fi.Size() > 0 && fi.Size() < headerSize {
		return nil, fmt.Errorf("column: %s is smaller than the header: %w", path, ErrInvalidFormat)
	}

	m, err := mmap.OpenFile(path, minSize)
	if err != nil {
		return nil, fmt.Errorf("column: open %s: %w", path, err)
	}

	c := &Column{
		slotSize: slotSize,
		mapping:  m,
	}

	dataBytes := m.Size() - headerSize
	if dataBytes < 0 {
		_ = m.Close()
		return nil, fmt.Errorf("column: %s is smaller than the header: %w", path, ErrInvalidFormat)
	}
	c.capacity.Store(uint64(dataBytes / slotSize))

	committed := binary.LittleEndian.Uint64(m.Bytes()[0:headerSize])
	if committed > c.capacity.Load() {
		_ = m.Close()
		return nil, fmt.Errorf("column: %s header declares %d committed rows but only %d slots are allocated: %w", path, committed, c.capacity.Load(), ErrInvalidFormat)
	}
	c.count.Store(committed)

	return c, nil
}

// chunkSlots returns how many slots fit in one growth chunk, at least one.
func chunkSlots(slotSize int) int {
	n := ChunkBytes / slotSize
	if n < 1 {
		n = 1
	}
	return n
}

// Count returns the number of committed rows.
func (c *Column) Count() uint64 {
	return c.count.Load()
}

// Append writes value to the next slot and commits it, growing the column
// first if necessary. value must be exactly slotSize bytes. It returns the
// row index the value was written at.
func (c *Column) Append(value []byte) (uint64, error) {
	if len(value) != c.slotSize {
		return 0, fmt.Errorf("column: value is %d bytes, want %d", len(value), c.slotSize)
	}

	idx := c.count.Load()
	if idx+1 > c.capacity.Load() {
		if err := c.grow(idx + 1); err != nil {
			return 0, err
		}
	}

	offset := headerSize + int(idx)*c.slotSize
	copy(c.mapping.Bytes()[offset:offset+c.slotSize], value)

	newCount := idx + 1
	binary.LittleEndian.PutUint64(c.mapping.Bytes()[0:headerSize], newCount)
	c.count.Store(newCount)

	return idx, nil
}

// AppendBatch writes n contiguous slots from data (exactly n*slotSize bytes)
// and commits them as a single unit: capacity is grown to cover the whole
// batch before any byte is written, so a growth failure leaves count
// unchanged and no partial row visible. It returns the row index of the
// first element written.
func (c *Column) AppendBatch(data []byte, n int) (uint64, error) {
	if n <= 0 {
		return c.count.Load(), nil
	}
	if len(data) != n*c.slotSize {
		return 0, fmt.Errorf("column: batch is %d bytes, want %d for %d elements", len(data), n*c.slotSize, n)
	}

	idx := c.count.Load()
	if idx+uint64(n) > c.capacity.Load() {
		if err := c.grow(idx + uint64(n)); err != nil {
			return 0, err
		}
	}

	offset := headerSize + int(idx)*c.slotSize
	copy(c.mapping.Bytes()[offset:offset+len(data)], data)

	newCount := idx + uint64(n)
	binary.LittleEndian.PutUint64(c.mapping.Bytes()[0:headerSize], newCount)
	c.count.Store(newCount)

	return idx, nil
}

// grow ensures capacity is at least minSlots, using double-checked locking
// so that the common case (capacity already sufficient) never takes growMu.
func (c *Column) grow(minSlots uint64) error {
	c.growMu.Lock()
	defer c.growMu.Unlock()

	cur := c.capacity.Load()
	if cur >= minSlots {
		return nil
	}

	next := cur + uint64(chunkSlots(c.slotSize))
	if next <= cur {
		next = cur * 2
	}
	if next < minSlots {
		next = minSlots
	}
	if next == 0 {
		next = 1
	}

	newSize := headerSize + int(next)*c.slotSize
	if err := c.mapping.Grow(newSize); err != nil {
		return fmt.Errorf("column: grow to %d slots: %w", next, err)
	}

	c.capacity.Store(next)
	if c.onGrow != nil {
		c.onGrow(uint64(newSize))
	}
	return nil
}

// ReadSlice returns a zero-copy view of the slot at idx. The returned slice
// is only valid until the next call to Append triggers a grow, or Close is
// called; callers that need the data to outlive that window must copy it.
func (c *Column) ReadSlice(idx uint64) ([]byte, error) {
	if idx >= c.count.Load() {
		return nil, fmt.Errorf("column: index %d out of range (count %d)", idx, c.count.Load())
	}
	offset := headerSize + int(idx)*c.slotSize
	return c.mapping.Bytes()[offset : offset+c.slotSize], nil
}

// ReadUint64 reads the slot at idx as a little-endian uint64. slotSize must
// be 8.
func (c *Column) ReadUint64(idx uint64) (uint64, error) {
	b, err := c.ReadSlice(idx)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadFloat64 reads the slot at idx as a little-endian IEEE-754 float64.
// slotSize must be 8.
func (c *Column) ReadFloat64(idx uint64) (float64, error) {
	b, err := c.ReadSlice(idx)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// Sync flushes all committed data, and the header, back to the underlying
// file. When async is false it blocks until the data is durable.
func (c *Column) Sync(async bool) error {
	n, err := conv.Uint64ToInt(c.count.Load())
	if err != nil {
		return fmt.Errorf("column: sync: %w", err)
	}
	length := headerSize + n*c.slotSize
	return c.mapping.Sync(0, length, async)
}

// Close unmaps and closes the column file. It issues no msync of its own;
// Sync does that.
func (c *Column) Close() error {
	return c.mapping.Close()
}
