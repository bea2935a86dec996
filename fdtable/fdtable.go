// Package fdtable implements the flatfs file descriptor table: in-memory
// only, indexed by descriptor number, mapping a descriptor to an inode
// index and a byte read/write offset. Descriptor 0 is reserved for the
// root directory and is never handed out by Open. Nothing here is
// persisted; mount resets the whole table (spec §3.2, §4.1).
package fdtable

import "flatfs/layout"

// FreeInode marks a descriptor slot as unused.
const FreeInode = -1

// Descriptor is one entry of the table.
type Descriptor struct {
	Inode int // FreeInode if this slot is not in use
	Rwptr int
}

// Table is the whole descriptor array, one slot per inode index.
type Table struct {
	entries [layout.NumInodes]Descriptor
}

// New returns a table with descriptor 0 bound to the root inode and all
// other slots free, the state every mount resets to.
func New() *Table {
	t := &Table{}
	t.Reset()
	return t
}

// Reset rebinds descriptor 0 to the root inode and frees every other
// slot, as spec §4.1 requires on every mount.
func (t *Table) Reset() {
	for i := range t.entries {
		t.entries[i] = Descriptor{Inode: FreeInode}
	}
	t.entries[0] = Descriptor{Inode: 0, Rwptr: 0}
}

// Get returns a copy of descriptor fd.
func (t *Table) Get(fd int) Descriptor { return t.entries[fd] }

// Set overwrites descriptor fd.
func (t *Table) Set(fd int, d Descriptor) { t.entries[fd] = d }

// InUse reports whether descriptor fd is bound to an inode.
func (t *Table) InUse(fd int) bool { return t.entries[fd].Inode != FreeInode }

// IsOpen reports whether any descriptor (other than 0) already
// references inode ino; flatfs allows at most one open descriptor per
// file (spec §4.4).
func (t *Table) IsOpen(ino int) bool {
	for i := 1; i < layout.NumInodes; i++ {
		if t.entries[i].Inode == ino {
			return true
		}
	}
	return false
}

// FirstFree returns the first free descriptor slot in [1, NumInodes), or
// -1 if the table is exhausted.
func (t *Table) FirstFree() int {
	for i := 1; i < layout.NumInodes; i++ {
		if t.entries[i].Inode == FreeInode {
			return i
		}
	}
	return -1
}
