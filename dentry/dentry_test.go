package dentry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flatfs/blockdev"
	"flatfs/dentry"
	"flatfs/layout"
)

func TestSetNameNameStringRoundTrip(t *testing.T) {
	var e dentry.Entry
	e.SetName("report.txt")
	require.Equal(t, "report.txt", e.NameString())
}

func TestFindByNameIgnoresEmptySlots(t *testing.T) {
	tbl := &dentry.Table{}
	var e dentry.Entry
	e.SetName("a")
	e.Mode = dentry.ModeInUse
	tbl.Set(3, e)

	require.Equal(t, 3, tbl.FindByName("a"))
	require.Equal(t, -1, tbl.FindByName("b"))
}

func TestRemovedEntryNoLongerFound(t *testing.T) {
	tbl := &dentry.Table{}
	var e dentry.Entry
	e.SetName("a")
	e.Mode = dentry.ModeInUse
	tbl.Set(0, e)
	require.Equal(t, 0, tbl.FindByName("a"))

	e.Mode = dentry.ModeEmpty
	e.SetName("")
	tbl.Set(0, e)
	require.Equal(t, -1, tbl.FindByName("a"))
}

func TestLoadFlushRoundTrip(t *testing.T) {
	dev := blockdev.NewMemDisk(layout.BlockSize, layout.NumTotalBlocks())
	tbl := &dentry.Table{}
	var e dentry.Entry
	e.SetName("hello")
	e.Mode = dentry.ModeInUse
	tbl.Set(5, e)

	require.NoError(t, dentry.Flush(dev, tbl))

	loaded, err := dentry.Load(dev)
	require.NoError(t, err)
	require.Equal(t, 5, loaded.FindByName("hello"))
}
