package blockdev

// MemDisk is an in-memory Device, used by unit tests that exercise the
// allocator and read/write engine without touching a real file, the same
// role the block/*_test.go fakes play in keks-dumbfs/blkfile.
type MemDisk struct {
	blockSize int
	data      []byte
}

var _ Device = (*MemDisk)(nil)

// NewMemDisk allocates a zero-filled in-memory disk.
func NewMemDisk(blockSize, numBlocks int) *MemDisk {
	return &MemDisk{
		blockSize: blockSize,
		data:      make([]byte, blockSize*numBlocks),
	}
}

func (d *MemDisk) BlockSize() int { return d.blockSize }
func (d *MemDisk) NumBlocks() int { return len(d.data) / d.blockSize }

func (d *MemDisk) ReadBlocks(start, count int, buf []byte) error {
	if err := checkRange(start, count, d.NumBlocks()); err != nil {
		return err
	}
	off := start * d.blockSize
	n := count * d.blockSize
	copy(buf[:n], d.data[off:off+n])
	return nil
}

func (d *MemDisk) WriteBlocks(start, count int, buf []byte) error {
	if err := checkRange(start, count, d.NumBlocks()); err != nil {
		return err
	}
	off := start * d.blockSize
	n := count * d.blockSize
	copy(d.data[off:off+n], buf[:n])
	return nil
}

func (d *MemDisk) Close() error { return nil }
