package super_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flatfs/blockdev"
	"flatfs/layout"
	"flatfs/super"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sb := super.New()
	got, err := super.Decode(super.Encode(sb))
	require.NoError(t, err)
	require.Equal(t, sb, got)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := super.Encode(super.New())
	buf[0] ^= 0xFF
	_, err := super.Decode(buf)
	require.Error(t, err)
}

func TestWriteReadThroughDevice(t *testing.T) {
	dev := blockdev.NewMemDisk(layout.BlockSize, layout.NumTotalBlocks())
	sb := super.New()
	require.NoError(t, super.Write(dev, sb))

	got, err := super.Read(dev)
	require.NoError(t, err)
	require.Equal(t, sb, got)
}
