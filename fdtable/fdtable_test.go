package fdtable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flatfs/fdtable"
	"flatfs/layout"
)

func TestNewBindsRootAndFreesRest(t *testing.T) {
	tbl := fdtable.New()
	require.True(t, tbl.InUse(0))
	require.Equal(t, 0, tbl.Get(0).Inode)
	for fd := 1; fd < layout.NumInodes; fd++ {
		require.False(t, tbl.InUse(fd))
	}
}

func TestFirstFreeAndSet(t *testing.T) {
	tbl := fdtable.New()
	fd := tbl.FirstFree()
	require.Equal(t, 1, fd)

	tbl.Set(fd, fdtable.Descriptor{Inode: 4, Rwptr: 0})
	require.True(t, tbl.InUse(fd))
	require.True(t, tbl.IsOpen(4))
	require.Equal(t, 2, tbl.FirstFree())
}

func TestResetClearsEverythingButRoot(t *testing.T) {
	tbl := fdtable.New()
	tbl.Set(1, fdtable.Descriptor{Inode: 4, Rwptr: 10})
	tbl.Reset()
	require.False(t, tbl.InUse(1))
	require.True(t, tbl.InUse(0))
}

func TestFirstFreeExhaustion(t *testing.T) {
	tbl := fdtable.New()
	for fd := 1; fd < layout.NumInodes; fd++ {
		tbl.Set(fd, fdtable.Descriptor{Inode: fd, Rwptr: 0})
	}
	require.Equal(t, -1, tbl.FirstFree())
}
