package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperblockRoundTrip(t *testing.T) {
	sb := Superblock{Magic: Magic, FileCount: 3}
	sb.NodeList[0] = InUse
	sb.NodeList[1] = InUse

	data, err := sb.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 512)

	var got Superblock
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, sb, got)
}

func TestInodeRoundTrip(t *testing.T) {
	ino := NewEmptyInode(4)
	ino.Name = "hello.txt"
	ino.Mode = 0100644
	ino.LinkCount = 1
	ino.Size = 128
	ino.AccessTime = time.Unix(1700000000, 0)
	ino.ModifyTime = time.Unix(1700000001, 0)
	ino.ChangeTime = time.Unix(1700000002, 0)
	ino.Direct[0] = 42
	ino.SingleIndirect[0] = 7

	data, err := ino.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 512)

	var got Inode
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, ino, got)
}

func TestInodeNameTooLongRejected(t *testing.T) {
	ino := NewEmptyInode(0)
	ino.Name = string(make([]byte, MaxNameLength+1))

	_, err := ino.MarshalBinary()
	assert.Error(t, err)
}

func TestIndirectBlockRoundTrip(t *testing.T) {
	ib := NewEmptyIndirectBlock()
	ib.Pointers[0] = 1000
	ib.Pointers[127] = 2000

	data, err := ib.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 512)

	var got IndirectBlock
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, ib, got)
}

func TestLayoutConstantsMatchSpec(t *testing.T) {
	assert.EqualValues(t, 379, DataStart)
	assert.EqualValues(t, 29051, DiskEnd)
	assert.EqualValues(t, 32, SingleIndirectBase)
	assert.EqualValues(t, 8224, DoubleIndirectBase)
	assert.EqualValues(t, 24608, MaxLogicalBlock)
	assert.EqualValues(t, 28672, NumDataBlocks)
}
