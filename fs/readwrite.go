package fs

import (
	"flatfs/bitmap"
	"flatfs/diagio"
	"flatfs/inode"
	"flatfs/layout"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// blockForRead resolves file-relative block b to an absolute block
// number, lazily loading the indirect index block into ib on first need.
// A zero result means the mapping is a hole (spec §4.7); holes cannot
// arise under normal operation (§4.8's no-hole invariant) but a
// corrupted disk could still produce one, so the read path stops rather
// than fabricating zero bytes.
func (fsys *Filesystem) blockForRead(in *inode.Inode, b int, ib *indirectBlock, ibLoaded *bool) (int, error) {
	if b < layout.NumDirectPointers {
		return int(in.Direct[b]), nil
	}
	if in.Indirect == 0 {
		return 0, nil
	}
	if !*ibLoaded {
		loaded, err := readIndirect(fsys.dev, int(in.Indirect))
		if err != nil {
			return 0, err
		}
		*ib = loaded
		*ibLoaded = true
	}
	return int(ib[b-layout.NumDirectPointers]), nil
}

// Read implements the Read/Write engine's read path (spec §4.7): returns
// the number of bytes actually read, 0 on any precondition failure.
func (fsys *Filesystem) Read(fd int, buf []byte) int {
	if len(buf) == 0 || fd <= 0 || fd >= layout.NumInodes || !fsys.fds.InUse(fd) {
		return 0
	}
	d := fsys.fds.Get(fd)
	in := fsys.inodes.Get(d.Inode)
	if d.Rwptr >= int(in.Size) {
		return 0
	}

	effLen := minInt(len(buf), int(in.Size)-d.Rwptr)

	var ib indirectBlock
	ibLoaded := false

	remaining := effLen
	outOff := 0
	blockBuf := make([]byte, layout.BlockSize)

	for remaining > 0 {
		b := d.Rwptr / layout.BlockSize
		abs, err := fsys.blockForRead(&in, b, &ib, &ibLoaded)
		if err != nil || abs == 0 {
			break
		}
		if err := fsys.dev.ReadBlocks(abs, 1, blockBuf); err != nil {
			break
		}
		blockOffset := d.Rwptr % layout.BlockSize
		chunk := minInt(layout.BlockSize-blockOffset, remaining)
		copy(buf[outOff:outOff+chunk], blockBuf[blockOffset:blockOffset+chunk])

		d.Rwptr += chunk
		remaining -= chunk
		outOff += chunk
	}

	fsys.fds.Set(fd, d)
	return outOff
}

// locateOrAllocate resolves file-relative block b to an absolute block
// number, allocating a fresh data block (and, lazily, the indirect index
// block) from the bitmap on demand (spec §4.8 step 1). ok is false when
// the bitmap is exhausted.
func (fsys *Filesystem) locateOrAllocate(in *inode.Inode, b int, ib *indirectBlock, ibLoaded, ibDirty *bool) (abs int, ok bool) {
	if b < layout.NumDirectPointers {
		if in.Direct[b] != 0 {
			return int(in.Direct[b]), true
		}
		k := fsys.bm.Alloc()
		if k == bitmap.NoSpace {
			return 0, false
		}
		abs = bitmap.AbsoluteBlock(k)
		in.Direct[b] = uint32(abs)
		return abs, true
	}

	if in.Indirect == 0 {
		k := fsys.bm.Alloc()
		if k == bitmap.NoSpace {
			return 0, false
		}
		in.Indirect = uint32(bitmap.AbsoluteBlock(k))
		*ib = indirectBlock{}
		*ibLoaded = true
		*ibDirty = true
	} else if !*ibLoaded {
		loaded, err := readIndirect(fsys.dev, int(in.Indirect))
		if err != nil {
			return 0, false
		}
		*ib = loaded
		*ibLoaded = true
	}

	s := b - layout.NumDirectPointers
	if ib[s] != 0 {
		return int(ib[s]), true
	}
	k := fsys.bm.Alloc()
	if k == bitmap.NoSpace {
		return 0, false
	}
	abs = bitmap.AbsoluteBlock(k)
	ib[s] = uint32(abs)
	*ibDirty = true
	return abs, true
}

// Write implements the Read/Write engine's write path (spec §4.8):
// returns the number of bytes actually written, 0 on any precondition
// failure, possibly short if the disk runs out of free blocks.
func (fsys *Filesystem) Write(fd int, buf []byte) int {
	if len(buf) == 0 || fd <= 0 || fd >= layout.NumInodes || !fsys.fds.InUse(fd) {
		return 0
	}
	d := fsys.fds.Get(fd)
	in := fsys.inodes.Get(d.Inode)
	if d.Rwptr < 0 || d.Rwptr > int(in.Size) || d.Rwptr >= layout.MaxFileBytes {
		return 0
	}

	sizeInitial := int(in.Size)

	var ib indirectBlock
	ibLoaded, ibDirty := false, false

	remaining := len(buf)
	outOff := 0
	blockBuf := make([]byte, layout.BlockSize)

	for remaining > 0 {
		b := d.Rwptr / layout.BlockSize
		if b >= layout.MaxBlocksPerFile-1 {
			break
		}
		abs, ok := fsys.locateOrAllocate(&in, b, &ib, &ibLoaded, &ibDirty)
		if !ok {
			break
		}

		if err := fsys.dev.ReadBlocks(abs, 1, blockBuf); err != nil {
			break
		}
		blockOffset := d.Rwptr % layout.BlockSize
		chunk := minInt(layout.BlockSize-blockOffset, remaining)
		copy(blockBuf[blockOffset:blockOffset+chunk], buf[outOff:outOff+chunk])
		if err := fsys.dev.WriteBlocks(abs, 1, blockBuf); err != nil {
			break
		}

		d.Rwptr += chunk
		remaining -= chunk
		outOff += chunk
	}

	if outOff > 0 {
		sizeDelta := maxInt(0, d.Rwptr-sizeInitial)
		in.Size = uint32(sizeInitial + sizeDelta)
		if ibDirty {
			if err := writeIndirect(fsys.dev, int(in.Indirect), ib); err != nil {
				outOff = 0
			}
		}
		fsys.inodes.Set(d.Inode, in)
		if err := fsys.flushAfterWrite(); err != nil {
			diagio.Warnf("write: persisting metadata for inode %d: %v", d.Inode, err)
		}
	}

	fsys.fds.Set(fd, d)
	return outOff
}
