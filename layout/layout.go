// Package layout is the single source of truth for flatfs's on-disk
// geometry. Every other package imports the constants and offsets here
// instead of recomputing them, mirroring the role the teacher's boot
// package played for golangsfs ("simdisk").
package layout

// Fixed filesystem constants (spec-mandated, compile-time).
const (
	// BlockSize is the size in bytes of one block on the backing disk.
	BlockSize = 1024

	// NumInodes is the size of the fixed inode array. Inode 0 is the root
	// directory inode and is never handed out for a user file.
	NumInodes = 128

	// NumFileInodes is the number of inodes actually available to files.
	NumFileInodes = NumInodes - 1

	// NumDirectPointers is the number of direct block pointers per inode.
	NumDirectPointers = 12

	// PointerWidth is the width, in bytes, of one block pointer.
	PointerWidth = 4

	// PointersPerIndirectBlock is the number of block pointers that fit in
	// one indirect index block. The source this spec traces to computes
	// BlockSize/PointerWidth+1 and then walks it with a -1 correction
	// elsewhere; flatfs fixes the usable count at BlockSize/PointerWidth
	// and uses it everywhere, per the spec's open question resolution.
	PointersPerIndirectBlock = BlockSize / PointerWidth

	// MaxBlocksPerFile is the largest number of data blocks one file can
	// reference: the direct pointers plus everything addressable through
	// the single indirect block.
	MaxBlocksPerFile = NumDirectPointers + PointersPerIndirectBlock

	// MaxFileBytes is the largest a file's size may grow to.
	MaxFileBytes = MaxBlocksPerFile * BlockSize

	// MaxFilenameLen is the largest filename, including the trailing NUL.
	MaxFilenameLen = 60

	// SuperblockMagic identifies a flatfs disk image.
	SuperblockMagic = 0xACBD0005
)

// On-disk record sizes. Fixed and packed field-by-field (see
// the encode functions of packages inode and dentry) so that disks are readable independent of
// struct layout or alignment on whatever machine wrote them.
const (
	// InodeRecordSize is the packed on-disk size of one inode: mode,
	// link_cnt, size, 12 direct pointers, and one indirect pointer, each a
	// little-endian uint32.
	InodeRecordSize = (3 + NumDirectPointers + 1) * PointerWidth

	// DirEntryRecordSize is the packed on-disk size of one directory
	// entry: the filename buffer plus a little-endian uint32 mode flag.
	DirEntryRecordSize = MaxFilenameLen + PointerWidth
)

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// NumInodeBlocks is the number of blocks occupied by the inode table.
func NumInodeBlocks() int {
	return ceilDiv(NumInodes*InodeRecordSize, BlockSize)
}

// NumDirBlocks is the number of blocks occupied by the root directory
// table.
func NumDirBlocks() int {
	return ceilDiv(NumFileInodes*DirEntryRecordSize, BlockSize)
}

// NumDataBlocks is the size of the data region, deliberately scaled down
// from the theoretical maximum (every inode at MaxFileBytes) because real
// filesystems never fill all inodes to maximum size.
func NumDataBlocks() int {
	return ceilDiv(MaxBlocksPerFile*NumFileInodes, 16)
}

// NumBitmapBlocks is the number of blocks occupied by the free-space
// bitmap, one byte per data block.
func NumBitmapBlocks() int {
	return ceilDiv(NumDataBlocks(), BlockSize)
}

// Fixed block offsets, derived from the section sizes above.
const (
	SuperblockOffset = 0
)

// InodeTableOffset is the first block of the inode table.
func InodeTableOffset() int { return SuperblockOffset + 1 }

// DirTableOffset is the first block of the root directory table.
func DirTableOffset() int { return InodeTableOffset() + NumInodeBlocks() }

// DataBlocksOffset is the first block of the data region. Bitmap index i
// corresponds to absolute block DataBlocksOffset+i.
func DataBlocksOffset() int { return DirTableOffset() + NumDirBlocks() }

// BitmapOffset is the first block of the free-space bitmap.
func BitmapOffset() int { return DataBlocksOffset() + NumDataBlocks() }

// NumTotalBlocks is the size, in blocks, of the whole backing disk.
func NumTotalBlocks() int { return BitmapOffset() + NumBitmapBlocks() }
