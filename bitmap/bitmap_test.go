package bitmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flatfs/bitmap"
	"flatfs/blockdev"
	"flatfs/layout"
)

func TestAllocIsFirstFit(t *testing.T) {
	bm := bitmap.New()
	a := bm.Alloc()
	b := bm.Alloc()
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)

	bm.Free(a)
	c := bm.Alloc()
	require.Equal(t, 0, c) // a's slot is reused before a fresh one
}

func TestAllocExhaustion(t *testing.T) {
	bm := bitmap.New()
	for i := 0; i < layout.NumDataBlocks(); i++ {
		require.NotEqual(t, bitmap.NoSpace, bm.Alloc())
	}
	require.Equal(t, bitmap.NoSpace, bm.Alloc())
}

func TestCountAllocated(t *testing.T) {
	bm := bitmap.New()
	require.Equal(t, 0, bm.CountAllocated())
	i := bm.Alloc()
	require.Equal(t, 1, bm.CountAllocated())
	bm.Free(i)
	require.Equal(t, 0, bm.CountAllocated())
}

func TestAbsoluteBlockRoundTrip(t *testing.T) {
	require.Equal(t, layout.DataBlocksOffset(), bitmap.AbsoluteBlock(0))
	require.Equal(t, 0, bitmap.BitmapIndex(bitmap.AbsoluteBlock(0)))
	require.Equal(t, 7, bitmap.BitmapIndex(bitmap.AbsoluteBlock(7)))
}

func TestLoadFlushRoundTrip(t *testing.T) {
	dev := blockdev.NewMemDisk(layout.BlockSize, layout.NumTotalBlocks())
	bm := bitmap.New()
	bm.Alloc()
	bm.Alloc()
	require.NoError(t, bitmap.Flush(dev, bm))

	loaded, err := bitmap.Load(dev)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.CountAllocated())
}
