// Package super implements the flatfs superblock: one fixed-layout record
// at block 0, initialized on fresh format and read back on remount,
// invariant over the lifetime of the disk. This is the packed-binary
// analogue of golangsfs's super package, which stored the same
// information JSON-encoded; flatfs pins an explicit field-by-field
// little-endian layout instead so disks are readable independent of the
// writer's struct layout, per the spec's on-disk byte layout requirement.
package super

import (
	"encoding/binary"
	"fmt"

	"flatfs/blockdev"
	"flatfs/layout"
)

// Superblock is the fixed record persisted at block 0.
type Superblock struct {
	Magic         uint32
	BlockSize     uint32
	FSSize        uint32 // total blocks on the disk
	InodeTableLen uint32 // number of inodes
	RootDirInode  uint32 // always 0
}

// New builds the canonical superblock for a freshly formatted disk.
func New() Superblock {
	return Superblock{
		Magic:         layout.SuperblockMagic,
		BlockSize:     layout.BlockSize,
		FSSize:        uint32(layout.NumTotalBlocks()),
		InodeTableLen: layout.NumInodes,
		RootDirInode:  0,
	}
}

// Encode packs sb into a zeroed block-sized buffer.
func Encode(sb Superblock) []byte {
	buf := make([]byte, layout.BlockSize)
	binary.LittleEndian.PutUint32(buf[0:4], sb.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], sb.BlockSize)
	binary.LittleEndian.PutUint32(buf[8:12], sb.FSSize)
	binary.LittleEndian.PutUint32(buf[12:16], sb.InodeTableLen)
	binary.LittleEndian.PutUint32(buf[16:20], sb.RootDirInode)
	return buf
}

// Decode unpacks a superblock from a block-sized buffer.
func Decode(buf []byte) (Superblock, error) {
	if len(buf) < 20 {
		return Superblock{}, fmt.Errorf("super: buffer too small: %d bytes", len(buf))
	}
	sb := Superblock{
		Magic:         binary.LittleEndian.Uint32(buf[0:4]),
		BlockSize:     binary.LittleEndian.Uint32(buf[4:8]),
		FSSize:        binary.LittleEndian.Uint32(buf[8:12]),
		InodeTableLen: binary.LittleEndian.Uint32(buf[12:16]),
		RootDirInode:  binary.LittleEndian.Uint32(buf[16:20]),
	}
	if sb.Magic != layout.SuperblockMagic {
		return Superblock{}, fmt.Errorf("super: bad magic 0x%x, want 0x%x", sb.Magic, uint32(layout.SuperblockMagic))
	}
	return sb, nil
}

// Read loads the superblock from block 0 of dev.
func Read(dev blockdev.Device) (Superblock, error) {
	buf := make([]byte, layout.BlockSize)
	if err := dev.ReadBlocks(layout.SuperblockOffset, 1, buf); err != nil {
		return Superblock{}, fmt.Errorf("super: read: %w", err)
	}
	return Decode(buf)
}

// Write persists sb to block 0 of dev.
func Write(dev blockdev.Device, sb Superblock) error {
	if err := dev.WriteBlocks(layout.SuperblockOffset, 1, Encode(sb)); err != nil {
		return fmt.Errorf("super: write: %w", err)
	}
	return nil
}
