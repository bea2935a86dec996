// Package dentry implements the flatfs root directory table: a
// fixed-size array of NumFileInodes name/flag records persisted
// immediately after the inode table, wholly in memory and wholly
// rewritten on mutation. Directory entry i (0-indexed) is bound to inode
// i+1. This is the single-root-namespace analogue of golangsfs's
// inode.Dentry, which carried a parent pointer and a Content list to
// support a directory hierarchy flatfs does not (spec Non-goals); what
// remains here is exactly the name/mode pair spec §3.2 calls for.
package dentry

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"flatfs/blockdev"
	"flatfs/layout"
)

// Entry mode values.
const (
	ModeEmpty = 0
	ModeInUse = 1
)

// Entry is one slot of the root directory table.
type Entry struct {
	Name [layout.MaxFilenameLen]byte
	Mode uint32
}

// NameString returns the NUL-terminated name as a Go string.
func (e *Entry) NameString() string {
	if i := bytes.IndexByte(e.Name[:], 0); i >= 0 {
		return string(e.Name[:i])
	}
	return string(e.Name[:])
}

// SetName copies name into the entry's fixed buffer, NUL-terminated. The
// caller must have already checked len(name) < MaxFilenameLen.
func (e *Entry) SetName(name string) {
	e.Name = [layout.MaxFilenameLen]byte{}
	copy(e.Name[:], name)
}

func encode(e Entry, dst []byte) {
	copy(dst[0:layout.MaxFilenameLen], e.Name[:])
	binary.LittleEndian.PutUint32(dst[layout.MaxFilenameLen:layout.MaxFilenameLen+4], e.Mode)
}

func decode(src []byte) Entry {
	var e Entry
	copy(e.Name[:], src[0:layout.MaxFilenameLen])
	e.Mode = binary.LittleEndian.Uint32(src[layout.MaxFilenameLen : layout.MaxFilenameLen+4])
	return e
}

// Table is the whole in-memory mirror of the on-disk directory table.
type Table struct {
	entries [layout.NumFileInodes]Entry
}

// Get returns a copy of entry i.
func (t *Table) Get(i int) Entry { return t.entries[i] }

// Set overwrites entry i.
func (t *Table) Set(i int, e Entry) { t.entries[i] = e }

// FindByName returns the index of the active entry named name, or -1.
func (t *Table) FindByName(name string) int {
	for i := range t.entries {
		if t.entries[i].Mode == ModeInUse && t.entries[i].NameString() == name {
			return i
		}
	}
	return -1
}

func tableBytes() []byte {
	return make([]byte, layout.NumDirBlocks()*layout.BlockSize)
}

// Load reads the whole directory table off dev.
func Load(dev blockdev.Device) (*Table, error) {
	buf := tableBytes()
	if err := dev.ReadBlocks(layout.DirTableOffset(), layout.NumDirBlocks(), buf); err != nil {
		return nil, fmt.Errorf("dentry: load table: %w", err)
	}
	t := &Table{}
	for i := 0; i < layout.NumFileInodes; i++ {
		off := i * layout.DirEntryRecordSize
		t.entries[i] = decode(buf[off : off+layout.DirEntryRecordSize])
	}
	return t, nil
}

// Flush rewrites the whole directory table to dev.
func Flush(dev blockdev.Device, t *Table) error {
	buf := tableBytes()
	for i := 0; i < layout.NumFileInodes; i++ {
		off := i * layout.DirEntryRecordSize
		encode(t.entries[i], buf[off:off+layout.DirEntryRecordSize])
	}
	if err := dev.WriteBlocks(layout.DirTableOffset(), layout.NumDirBlocks(), buf); err != nil {
		return fmt.Errorf("dentry: flush table: %w", err)
	}
	return nil
}
