// Package fs is flatfs's core: the Open/Create/Remove engine, the
// Read/Write engine, the directory enumerator, and mount/format (spec §2
// components 8-11). It is the analogue of golangsfs's
// simdisk_procedure+command packages collapsed into a single importable
// API, generalized from "one shell session against a multi-user,
// multi-directory disk" down to "one Filesystem value against a
// single-root namespace" per spec §1's scope and §9's recommendation to
// bundle the process-wide mutable state into one caller-held value.
package fs

import (
	"fmt"

	"flatfs/bitmap"
	"flatfs/blockdev"
	"flatfs/dentry"
	"flatfs/fdtable"
	"flatfs/inode"
	"flatfs/layout"
	"flatfs/super"
)

// Filesystem bundles every in-memory table the engine needs. The caller
// owns one value per mounted disk and must not use it from more than one
// goroutine at a time (spec §5: no concurrent calls are supported).
type Filesystem struct {
	dev blockdev.Device
	sb  super.Superblock

	inodes *inode.Table
	dirs   *dentry.Table
	bm     *bitmap.Table
	fds    *fdtable.Table

	nextIterIndex int
}

// DefaultDiskPath is the conventional backing file name, mirroring
// golangsfs's boot.DISK_PATH_WHOLE ("./simdisk").
const DefaultDiskPath = "./flatdisk"

// Format initializes a fresh filesystem on dev: superblock, inode table,
// directory table, and bitmap are all zeroed/defaulted in memory and then
// written to their fixed offsets (spec §4.1).
func Format(dev blockdev.Device) (*Filesystem, error) {
	fsys := &Filesystem{
		dev:    dev,
		sb:     super.New(),
		inodes: &inode.Table{},
		dirs:   &dentry.Table{},
		bm:     bitmap.New(),
		fds:    fdtable.New(),
	}
	fsys.inodes.InitRoot()

	if err := super.Write(dev, fsys.sb); err != nil {
		return nil, err
	}
	if err := inode.Flush(dev, fsys.inodes); err != nil {
		return nil, err
	}
	if err := dentry.Flush(dev, fsys.dirs); err != nil {
		return nil, err
	}
	if err := bitmap.Flush(dev, fsys.bm); err != nil {
		return nil, err
	}
	return fsys, nil
}

// Mount attaches to an already-formatted dev, loading the four
// persistent regions wholly into memory and resetting the descriptor
// table and the directory iteration cursor (spec §4.1).
func Mount(dev blockdev.Device) (*Filesystem, error) {
	sb, err := super.Read(dev)
	if err != nil {
		return nil, fmt.Errorf("fs: mount: %w", err)
	}
	inodes, err := inode.Load(dev)
	if err != nil {
		return nil, fmt.Errorf("fs: mount: %w", err)
	}
	dirs, err := dentry.Load(dev)
	if err != nil {
		return nil, fmt.Errorf("fs: mount: %w", err)
	}
	bm, err := bitmap.Load(dev)
	if err != nil {
		return nil, fmt.Errorf("fs: mount: %w", err)
	}
	return &Filesystem{
		dev:    dev,
		sb:     sb,
		inodes: inodes,
		dirs:   dirs,
		bm:     bm,
		fds:    fdtable.New(),
	}, nil
}

// OpenDisk is a convenience that formats (fresh=true) or mounts
// (fresh=false) a file-backed disk sized to the canonical flatfs layout,
// creating the FileDisk and the Filesystem together.
func OpenDisk(path string, fresh bool) (*Filesystem, *blockdev.FileDisk, error) {
	var dev *blockdev.FileDisk
	var err error
	if fresh {
		dev, err = blockdev.InitFresh(path, layout.BlockSize, layout.NumTotalBlocks())
	} else {
		dev, err = blockdev.InitExisting(path, layout.BlockSize, layout.NumTotalBlocks())
	}
	if err != nil {
		return nil, nil, err
	}

	var fsys *Filesystem
	if fresh {
		fsys, err = Format(dev)
	} else {
		fsys, err = Mount(dev)
	}
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return fsys, dev, nil
}

// NumFiles returns the number of currently allocated files, the derived
// counter spec §4.1 asks mount to rebuild by scanning the inode table.
func (fsys *Filesystem) NumFiles() int {
	return fsys.inodes.CountLive()
}

// AllocatedDataBlocks returns the number of data blocks (and indirect
// index blocks) currently marked used in the free-space bitmap. Exposed
// for tests and diagnostics; not part of spec §6.2's API surface.
func (fsys *Filesystem) AllocatedDataBlocks() int {
	return fsys.bm.CountAllocated()
}

func (fsys *Filesystem) flushAfterWrite() error {
	if err := inode.Flush(fsys.dev, fsys.inodes); err != nil {
		return err
	}
	return bitmap.Flush(fsys.dev, fsys.bm)
}

func (fsys *Filesystem) flushAfterRemove() error {
	if err := inode.Flush(fsys.dev, fsys.inodes); err != nil {
		return err
	}
	if err := dentry.Flush(fsys.dev, fsys.dirs); err != nil {
		return err
	}
	return bitmap.Flush(fsys.dev, fsys.bm)
}

func (fsys *Filesystem) flushAfterOpen() error {
	if err := inode.Flush(fsys.dev, fsys.inodes); err != nil {
		return err
	}
	return dentry.Flush(fsys.dev, fsys.dirs)
}
