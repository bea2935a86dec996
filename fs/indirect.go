package fs

import (
	"encoding/binary"

	"flatfs/blockdev"
	"flatfs/layout"
)

// indirectBlock is the in-memory form of one indirect index block: a
// packed array of absolute block indices for file-relative blocks beyond
// the first NumDirectPointers.
type indirectBlock [layout.PointersPerIndirectBlock]uint32

func decodeIndirect(buf []byte) indirectBlock {
	var ib indirectBlock
	for i := range ib {
		ib[i] = binary.LittleEndian.Uint32(buf[i*layout.PointerWidth : (i+1)*layout.PointerWidth])
	}
	return ib
}

func encodeIndirect(ib indirectBlock) []byte {
	buf := make([]byte, layout.BlockSize)
	for i, v := range ib {
		binary.LittleEndian.PutUint32(buf[i*layout.PointerWidth:(i+1)*layout.PointerWidth], v)
	}
	return buf
}

func readIndirect(dev blockdev.Device, absBlock int) (indirectBlock, error) {
	buf := make([]byte, layout.BlockSize)
	if err := dev.ReadBlocks(absBlock, 1, buf); err != nil {
		return indirectBlock{}, err
	}
	return decodeIndirect(buf), nil
}

func writeIndirect(dev blockdev.Device, absBlock int, ib indirectBlock) error {
	return dev.WriteBlocks(absBlock, 1, encodeIndirect(ib))
}
