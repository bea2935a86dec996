package blockdev

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FileDisk backs a Device with a single regular file, issuing positional
// reads and writes directly through golang.org/x/sys/unix rather than
// through os.File's buffered paths, the same idiom
// mit-pdos-go-journal/disk's fileDisk uses for its backing store.
type FileDisk struct {
	fd        int
	blockSize int
	numBlocks int
}

var _ Device = (*FileDisk)(nil)

// InitFresh creates (or truncates) path and sizes it to hold numBlocks
// blocks of blockSize bytes, zero-filled.
func InitFresh(path string, blockSize, numBlocks int) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0o666)
	if err != nil {
		return nil, fmt.Errorf("blockdev: init fresh %q: %w", path, err)
	}
	size := int64(blockSize) * int64(numBlocks)
	if err := unix.Ftruncate(fd, size); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("blockdev: truncate %q to %d bytes: %w", path, size, err)
	}
	return &FileDisk{fd: fd, blockSize: blockSize, numBlocks: numBlocks}, nil
}

// InitExisting opens path, which must already hold numBlocks blocks of
// blockSize bytes.
func InitExisting(path string, blockSize, numBlocks int) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0o666)
	if err != nil {
		return nil, fmt.Errorf("blockdev: open existing %q: %w", path, err)
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("blockdev: stat %q: %w", path, err)
	}
	want := int64(blockSize) * int64(numBlocks)
	if st.Size < want {
		unix.Close(fd)
		return nil, fmt.Errorf("blockdev: %q is %d bytes, want at least %d", path, st.Size, want)
	}
	return &FileDisk{fd: fd, blockSize: blockSize, numBlocks: numBlocks}, nil
}

func (d *FileDisk) BlockSize() int { return d.blockSize }
func (d *FileDisk) NumBlocks() int { return d.numBlocks }

func (d *FileDisk) ReadBlocks(start, count int, buf []byte) error {
	if err := checkRange(start, count, d.numBlocks); err != nil {
		return err
	}
	n := count * d.blockSize
	if len(buf) < n {
		return fmt.Errorf("blockdev: read buffer too small: have %d, need %d", len(buf), n)
	}
	off := int64(start) * int64(d.blockSize)
	read := 0
	for read < n {
		m, err := unix.Pread(d.fd, buf[read:n], off+int64(read))
		if err != nil {
			return fmt.Errorf("blockdev: pread at block %d: %w", start, err)
		}
		if m == 0 {
			return fmt.Errorf("blockdev: short read at block %d: got %d of %d bytes", start, read, n)
		}
		read += m
	}
	return nil
}

func (d *FileDisk) WriteBlocks(start, count int, buf []byte) error {
	if err := checkRange(start, count, d.numBlocks); err != nil {
		return err
	}
	n := count * d.blockSize
	if len(buf) < n {
		return fmt.Errorf("blockdev: write buffer too small: have %d, need %d", len(buf), n)
	}
	off := int64(start) * int64(d.blockSize)
	written := 0
	for written < n {
		m, err := unix.Pwrite(d.fd, buf[written:n], off+int64(written))
		if err != nil {
			return fmt.Errorf("blockdev: pwrite at block %d: %w", start, err)
		}
		written += m
	}
	return nil
}

// Sync flushes the backing file to stable storage, mirroring the
// disk-level Barrier that mit-pdos-go-journal's Disk interface exposes.
// flatfs's core does not journal, so this is a best-effort durability
// hint rather than part of a crash-atomic protocol.
func (d *FileDisk) Sync() error {
	return unix.Fsync(d.fd)
}

func (d *FileDisk) Close() error {
	return unix.Close(d.fd)
}
