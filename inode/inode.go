// Package inode implements the flatfs inode table: a fixed-size array of
// NumInodes records persisted immediately after the superblock, wholly
// loaded into memory at mount and wholly rewritten on metadata mutation.
// This replaces golangsfs's per-inode JSON records (inode.INode,
// Get_INode/Write_INode) with a fixed packed layout, since a single file
// no longer needs timestamps, ownership, or permission bits (spec
// Non-goals) and the whole table is small enough to keep resident.
package inode

import (
	"encoding/binary"
	"fmt"

	"flatfs/blockdev"
	"flatfs/layout"
)

// Mode values.
const (
	ModeUnused = 0
	ModeFile   = 1
)

// Inode is one entry of the fixed inode array. LinkCnt 0 means the slot is
// free; 1 means it is bound to a directory entry.
type Inode struct {
	Mode     uint32
	LinkCnt  uint32
	Size     uint32
	Direct   [layout.NumDirectPointers]uint32
	Indirect uint32
}

// Free reports whether this slot is unallocated.
func (in *Inode) Free() bool { return in.LinkCnt == 0 }

func encode(in Inode, dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], in.Mode)
	binary.LittleEndian.PutUint32(dst[4:8], in.LinkCnt)
	binary.LittleEndian.PutUint32(dst[8:12], in.Size)
	off := 12
	for _, p := range in.Direct {
		binary.LittleEndian.PutUint32(dst[off:off+4], p)
		off += 4
	}
	binary.LittleEndian.PutUint32(dst[off:off+4], in.Indirect)
}

func decode(src []byte) Inode {
	var in Inode
	in.Mode = binary.LittleEndian.Uint32(src[0:4])
	in.LinkCnt = binary.LittleEndian.Uint32(src[4:8])
	in.Size = binary.LittleEndian.Uint32(src[8:12])
	off := 12
	for i := range in.Direct {
		in.Direct[i] = binary.LittleEndian.Uint32(src[off : off+4])
		off += 4
	}
	in.Indirect = binary.LittleEndian.Uint32(src[off : off+4])
	return in
}

// Table is the whole in-memory mirror of the on-disk inode array.
type Table struct {
	entries [layout.NumInodes]Inode
}

// Get returns a copy of inode i.
func (t *Table) Get(i int) Inode { return t.entries[i] }

// Set overwrites inode i.
func (t *Table) Set(i int, in Inode) { t.entries[i] = in }

// FirstFree scans for the first unused inode in [1, NumInodes), inode 0
// being permanently reserved for the root directory. It returns -1 if the
// table is exhausted.
func (t *Table) FirstFree() int {
	for i := 1; i < layout.NumInodes; i++ {
		if t.entries[i].Free() {
			return i
		}
	}
	return -1
}

// CountLive returns the number of allocated file inodes, excluding inode
// 0.
func (t *Table) CountLive() int {
	n := 0
	for i := 1; i < layout.NumInodes; i++ {
		if !t.entries[i].Free() {
			n++
		}
	}
	return n
}

func tableBytes() []byte {
	return make([]byte, layout.NumInodeBlocks()*layout.BlockSize)
}

// Load reads the whole inode table off dev.
func Load(dev blockdev.Device) (*Table, error) {
	buf := tableBytes()
	if err := dev.ReadBlocks(layout.InodeTableOffset(), layout.NumInodeBlocks(), buf); err != nil {
		return nil, fmt.Errorf("inode: load table: %w", err)
	}
	t := &Table{}
	for i := 0; i < layout.NumInodes; i++ {
		off := i * layout.InodeRecordSize
		t.entries[i] = decode(buf[off : off+layout.InodeRecordSize])
	}
	return t, nil
}

// Flush rewrites the whole inode table to dev.
func Flush(dev blockdev.Device, t *Table) error {
	buf := tableBytes()
	for i := 0; i < layout.NumInodes; i++ {
		off := i * layout.InodeRecordSize
		encode(t.entries[i], buf[off:off+layout.InodeRecordSize])
	}
	if err := dev.WriteBlocks(layout.InodeTableOffset(), layout.NumInodeBlocks(), buf); err != nil {
		return fmt.Errorf("inode: flush table: %w", err)
	}
	return nil
}

// InitRoot resets inode 0 to the reserved, always-allocated root
// directory inode.
func (t *Table) InitRoot() {
	t.entries[0] = Inode{Mode: ModeFile, LinkCnt: 1}
}
