// Package bitmap implements the flatfs free-space bitmap: one byte per
// data block (0 = free, 1 = allocated), persisted at a fixed offset,
// wholly in memory and wholly rewritten on mutation. It also hosts the
// allocation helper (spec §2 component 7): first-fit scan for a free
// slot, or the "no space" sentinel.
//
// This plays the role golangsfs's zmap package played, but trades that
// package's bit-packed vector (one bit per block, scanned byte-then-bit)
// for flatfs's spec-mandated one-byte-per-block layout, so that a
// bitmap byte and the block it tracks have a direct 1:1 index
// correspondence (spec §3.2, §8).
package bitmap

import (
	"fmt"

	"flatfs/blockdev"
	"flatfs/layout"
)

const (
	Free      = 0
	Allocated = 1
)

// NoSpace is the sentinel index returned when allocation fails.
const NoSpace = -1

// Table is the whole in-memory mirror of the free-space bitmap. Index i
// tracks absolute block layout.DataBlocksOffset()+i.
type Table struct {
	bytes []byte
}

// New returns a wholly-free bitmap sized for layout.NumDataBlocks.
func New() *Table {
	return &Table{bytes: make([]byte, layout.NumDataBlocks())}
}

// Alloc finds the first free slot, first-fit, marks it allocated, and
// returns its index. It returns NoSpace if the bitmap is full.
func (t *Table) Alloc() int {
	for i, b := range t.bytes {
		if b == Free {
			t.bytes[i] = Allocated
			return i
		}
	}
	return NoSpace
}

// Free marks slot i free again.
func (t *Table) Free(i int) {
	t.bytes[i] = Free
}

// CountAllocated returns the number of slots currently marked allocated.
func (t *Table) CountAllocated() int {
	n := 0
	for _, b := range t.bytes {
		if b == Allocated {
			n++
		}
	}
	return n
}

func bitmapBytes() []byte {
	return make([]byte, layout.NumBitmapBlocks()*layout.BlockSize)
}

// Load reads the whole bitmap off dev.
func Load(dev blockdev.Device) (*Table, error) {
	buf := bitmapBytes()
	if err := dev.ReadBlocks(layout.BitmapOffset(), layout.NumBitmapBlocks(), buf); err != nil {
		return nil, fmt.Errorf("bitmap: load: %w", err)
	}
	t := &Table{bytes: make([]byte, layout.NumDataBlocks())}
	copy(t.bytes, buf[:layout.NumDataBlocks()])
	return t, nil
}

// Flush rewrites the whole bitmap to dev.
func Flush(dev blockdev.Device, t *Table) error {
	buf := bitmapBytes()
	copy(buf, t.bytes)
	if err := dev.WriteBlocks(layout.BitmapOffset(), layout.NumBitmapBlocks(), buf); err != nil {
		return fmt.Errorf("bitmap: flush: %w", err)
	}
	return nil
}

// AbsoluteBlock converts a bitmap index to an absolute block number.
func AbsoluteBlock(i int) int { return layout.DataBlocksOffset() + i }

// BitmapIndex converts an absolute block number back to a bitmap index.
func BitmapIndex(absolute int) int { return absolute - layout.DataBlocksOffset() }
