package fs

import (
	"flatfs/bitmap"
	"flatfs/dentry"
	"flatfs/diagio"
	"flatfs/fdtable"
	"flatfs/inode"
	"flatfs/layout"
)

// FileSize implements spec §4.3: linear directory scan, returning the
// matching inode's size, or -1 if name is not found.
func (fsys *Filesystem) FileSize(name string) int {
	i := fsys.dirs.FindByName(name)
	if i < 0 {
		return -1
	}
	return int(fsys.inodes.Get(i + 1).Size)
}

// Stat is a convenience layered over FileSize: it reports size alongside
// a found flag instead of overloading a sentinel return, adapted from
// the teacher's Is_target_file_exist helper.
func (fsys *Filesystem) Stat(name string) (size int, ok bool) {
	i := fsys.dirs.FindByName(name)
	if i < 0 {
		return 0, false
	}
	return int(fsys.inodes.Get(i + 1).Size), true
}

// Open implements spec §4.4: resolves name to an inode, either binding an
// existing file (rejecting a second concurrent open) or allocating a
// fresh inode, directory entry, and descriptor. Returns the descriptor
// number, or -1 on name-too-long, duplicate-open, or table exhaustion.
func (fsys *Filesystem) Open(name string) int {
	if len(name) >= layout.MaxFilenameLen {
		return -1
	}

	if i := fsys.dirs.FindByName(name); i >= 0 {
		ino := i + 1
		if fsys.fds.IsOpen(ino) {
			return -1
		}
		fd := fsys.fds.FirstFree()
		if fd == -1 {
			return -1
		}
		in := fsys.inodes.Get(ino)
		fsys.fds.Set(fd, fdtable.Descriptor{Inode: ino, Rwptr: int(in.Size)})
		return fd
	}

	ino := fsys.inodes.FirstFree()
	if ino == -1 {
		return -1
	}
	fd := fsys.fds.FirstFree()
	if fd == -1 {
		return -1
	}

	var e dentry.Entry
	e.SetName(name)
	e.Mode = dentry.ModeInUse
	fsys.dirs.Set(ino-1, e)

	fsys.inodes.Set(ino, inode.Inode{Mode: inode.ModeFile, LinkCnt: 1})
	fsys.fds.Set(fd, fdtable.Descriptor{Inode: ino, Rwptr: 0})

	if err := fsys.flushAfterOpen(); err != nil {
		diagio.Warnf("open %q: persisting metadata: %v", name, err)
	}
	return fd
}

// Close implements spec §4.5: purely in-memory, frees the descriptor
// slot. Returns 0 if the descriptor was in use, -1 otherwise (including
// on a repeated close).
func (fsys *Filesystem) Close(fd int) int {
	if fd <= 0 || fd >= layout.NumInodes || !fsys.fds.InUse(fd) {
		return -1
	}
	fsys.fds.Set(fd, fdtable.Descriptor{Inode: fdtable.FreeInode, Rwptr: 0})
	return 0
}

// Seek implements spec §4.6: moves the r/w pointer to loc, provided loc
// does not exceed the file's current size or MaxFileBytes. Seeking past
// EOF is never permitted; extension happens only through append writes.
func (fsys *Filesystem) Seek(fd int, loc int) int {
	if fd <= 0 || fd >= layout.NumInodes || !fsys.fds.InUse(fd) {
		return -1
	}
	d := fsys.fds.Get(fd)
	in := fsys.inodes.Get(d.Inode)
	if loc < 0 || loc > int(in.Size) || loc >= layout.MaxFileBytes {
		return -1
	}
	d.Rwptr = loc
	fsys.fds.Set(fd, d)
	return 0
}

// Remove implements spec §4.9: unlinks name from the directory table,
// closes any descriptor that still points at its inode, and returns
// every data block (and the indirect index block, if any) to the
// bitmap. Returns the freed inode index, or -1 if name was not found.
func (fsys *Filesystem) Remove(name string) int {
	i := fsys.dirs.FindByName(name)
	if i < 0 {
		return -1
	}
	ino := i + 1

	e := fsys.dirs.Get(i)
	e.Mode = dentry.ModeEmpty
	e.SetName("")
	fsys.dirs.Set(i, e)

	for fd := 1; fd < layout.NumInodes; fd++ {
		if fsys.fds.Get(fd).Inode == ino {
			fsys.fds.Set(fd, fdtable.Descriptor{Inode: fdtable.FreeInode, Rwptr: 0})
		}
	}

	in := fsys.inodes.Get(ino)
	if in.LinkCnt == 1 {
		for d := 0; d < layout.NumDirectPointers; d++ {
			if in.Direct[d] != 0 {
				fsys.freeDataBlock(int(in.Direct[d]))
				in.Direct[d] = 0
			}
		}
		if in.Indirect != 0 {
			if ib, err := readIndirect(fsys.dev, int(in.Indirect)); err == nil {
				for s := range ib {
					if ib[s] != 0 {
						fsys.freeDataBlock(int(ib[s]))
					}
				}
			}
			blockdevZero(fsys, int(in.Indirect))
			fsys.freeDataBlock(int(in.Indirect))
			in.Indirect = 0
		}
	}
	in.Mode = inode.ModeUnused
	in.Size = 0
	in.LinkCnt = 0
	fsys.inodes.Set(ino, in)

	if err := fsys.flushAfterRemove(); err != nil {
		diagio.Warnf("remove %q: persisting metadata: %v", name, err)
	}
	return ino
}

func (fsys *Filesystem) freeDataBlock(abs int) {
	blockdevZero(fsys, abs)
	fsys.bm.Free(bitmap.BitmapIndex(abs))
}

func blockdevZero(fsys *Filesystem, abs int) {
	zeros := make([]byte, layout.BlockSize)
	if err := fsys.dev.WriteBlocks(abs, 1, zeros); err != nil {
		diagio.Warnf("zeroing block %d: %v", abs, err)
	}
}

// NextFilename implements the directory enumerator (spec §4.2): returns
// the next active entry's name in table order, advancing the cursor.
// When there is no further active entry, the cursor resets to 0 and ok
// is false.
func (fsys *Filesystem) NextFilename() (name string, ok bool) {
	for fsys.nextIterIndex < layout.NumFileInodes {
		e := fsys.dirs.Get(fsys.nextIterIndex)
		fsys.nextIterIndex++
		if e.Mode == dentry.ModeInUse {
			return e.NameString(), true
		}
	}
	fsys.nextIterIndex = 0
	return "", false
}
