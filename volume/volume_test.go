package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

func newTestVolume(t *testing.T) *Volume {
	t.Helper()
	buf := make([]byte, int(layout.DiskEnd)*block.Size)
	stream := bytesextra.NewReadWriteSeeker(buf)

	v, err := Open(stream)
	require.NoError(t, err)
	return v
}

func TestOpenFreshVolumeFormats(t *testing.T) {
	v := newTestVolume(t)
	assert.EqualValues(t, layout.Magic, v.superblock.Magic)
	assert.Zero(t, v.superblock.FileCount)
}

func TestOpenRemountPreservesState(t *testing.T) {
	buf := make([]byte, int(layout.DiskEnd)*block.Size)
	stream := bytesextra.NewReadWriteSeeker(buf)

	v, err := Open(stream)
	require.NoError(t, err)
	_, err = v.Create("a.txt")
	require.NoError(t, err)
	require.NoError(t, v.Destroy())

	v2, err := Open(stream)
	require.NoError(t, err)
	entries, err := v2.Readdir()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
}

func TestCreateAndReaddir(t *testing.T) {
	v := newTestVolume(t)

	_, err := v.Create("one.txt")
	require.NoError(t, err)
	_, err = v.Create("two.txt")
	require.NoError(t, err)

	// Spec §8 boundary scenario: readdir returns names in inode-index order,
	// which for first-fit allocation on an otherwise-empty table matches
	// creation order.
	entries, err := v.Readdir()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one.txt", entries[0].Name)
	assert.Equal(t, "two.txt", entries[1].Name)
}

func TestCreateDuplicateNameFails(t *testing.T) {
	v := newTestVolume(t)
	_, err := v.Create("dup.txt")
	require.NoError(t, err)

	_, err = v.Create("dup.txt")
	assert.ErrorIs(t, err, errs.Exists)
}

func TestCreateNameTooLongFails(t *testing.T) {
	v := newTestVolume(t)
	longName := make([]byte, layout.MaxNameLength+1)
	for i := range longName {
		longName[i] = 'a'
	}
	_, err := v.Create(string(longName))
	assert.ErrorIs(t, err, errs.NameTooLong)
}

func TestWriteThenReadSmall(t *testing.T) {
	v := newTestVolume(t)
	_, err := v.Create("small.txt")
	require.NoError(t, err)

	n, err := v.Write("small.txt", 0, []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	buf := make([]byte, 32)
	n, err = v.Read("small.txt", 0, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf[:n]))
}

func TestWriteCrossesBlockBoundary(t *testing.T) {
	v := newTestVolume(t)
	_, err := v.Create("big.txt")
	require.NoError(t, err)

	data := make([]byte, block.Size*3+17)
	for i := range data {
		data[i] = byte(i % 251)
	}

	n, err := v.Write("big.txt", 0, data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	readBack := make([]byte, len(data))
	n, err = v.Read("big.txt", 0, readBack)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, readBack)
}

func TestWriteSixHundredBytesAllocatesTwoDirectBlocks(t *testing.T) {
	// Spec §8 boundary scenario: writing 600 bytes at offset 0 spans two
	// direct blocks (block.Size == 512), and only those two.
	v := newTestVolume(t)
	_, err := v.Create("six-hundred.txt")
	require.NoError(t, err)

	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i % 251)
	}
	n, err := v.Write("six-hundred.txt", 0, data)
	require.NoError(t, err)
	assert.Equal(t, 600, n)

	ino, err := v.lookupByName("six-hundred.txt")
	require.NoError(t, err)
	assert.NotEqual(t, layout.Unallocated, ino.Direct[0])
	assert.NotEqual(t, layout.Unallocated, ino.Direct[1])
	for i := 2; i < len(ino.Direct); i++ {
		assert.Equalf(t, layout.Unallocated, ino.Direct[i], "direct[%d] should remain unallocated", i)
	}

	readBack := make([]byte, 600)
	n, err = v.Read("six-hundred.txt", 0, readBack)
	require.NoError(t, err)
	assert.Equal(t, 600, n)
	assert.Equal(t, data, readBack)
}

func TestWriteSizeIsMaxNotAdditive(t *testing.T) {
	// Spec §9: writing the same range twice must not inflate size by
	// adding on top of the previous size.
	v := newTestVolume(t)
	_, err := v.Create("f.txt")
	require.NoError(t, err)

	_, err = v.Write("f.txt", 0, []byte("0123456789"))
	require.NoError(t, err)

	_, err = v.Write("f.txt", 0, []byte("abcde"))
	require.NoError(t, err)

	stat, err := v.Getattr("f.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 10, stat.Size)
}

func TestReadHoleReturnsZeros(t *testing.T) {
	v := newTestVolume(t)
	_, err := v.Create("sparse.txt")
	require.NoError(t, err)

	_, err = v.Write("sparse.txt", int64(block.Size*2), []byte("tail"))
	require.NoError(t, err)

	buf := make([]byte, block.Size)
	n, err := v.Read("sparse.txt", 0, buf)
	require.NoError(t, err)
	assert.Equal(t, block.Size, n)
	for _, b := range buf {
		assert.Zero(t, b)
	}
}

func TestInodeTableExhaustionAtNumNodes(t *testing.T) {
	v := newTestVolume(t)
	for i := 0; i < layout.NumNodes; i++ {
		_, err := v.Create(nameFor(i))
		require.NoErrorf(t, err, "creating file %d", i)
	}

	_, err := v.Create("one-too-many.txt")
	assert.ErrorIs(t, err, errs.NoSpace)
}

func TestUnlinkReclaimsInode(t *testing.T) {
	v := newTestVolume(t)
	_, err := v.Create("gone.txt")
	require.NoError(t, err)
	require.NoError(t, v.Unlink("gone.txt"))

	_, err = v.Getattr("gone.txt")
	assert.ErrorIs(t, err, errs.NotFound)

	// The freed slot must be reusable.
	for i := 0; i < layout.NumNodes; i++ {
		_, err := v.Create(nameFor(i))
		require.NoErrorf(t, err, "creating file %d", i)
	}
}

func TestUnlinkReclaimsDataBlocks(t *testing.T) {
	// Spec §8 boundary scenario: create + 4KB write + unlink clears every
	// data bitmap bit the write set, along with the inode bit.
	v := newTestVolume(t)

	before, err := v.dataAlloc.Count()
	require.NoError(t, err)
	require.Zero(t, before)

	_, err = v.Create("data.txt")
	require.NoError(t, err)
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 251)
	}
	_, err = v.Write("data.txt", 0, data)
	require.NoError(t, err)

	during, err := v.dataAlloc.Count()
	require.NoError(t, err)
	assert.Equal(t, 4096/block.Size, during)
	assert.Equal(t, 1, v.inodeAlloc.Count())

	require.NoError(t, v.Unlink("data.txt"))

	after, err := v.dataAlloc.Count()
	require.NoError(t, err)
	assert.Zero(t, after)
	assert.Zero(t, v.inodeAlloc.Count())

	require.NoError(t, v.CheckConsistency())
}

func TestFileCountMatchesInodeBitmapPopcount(t *testing.T) {
	// Spec §8 invariant: superblock.FileCount always equals the number of
	// in-use inode bitmap slots.
	v := newTestVolume(t)
	assert.Equal(t, v.inodeAlloc.Count(), int(v.superblock.FileCount))

	_, err := v.Create("one.txt")
	require.NoError(t, err)
	_, err = v.Create("two.txt")
	require.NoError(t, err)
	assert.Equal(t, v.inodeAlloc.Count(), int(v.superblock.FileCount))

	require.NoError(t, v.Unlink("one.txt"))
	assert.Equal(t, v.inodeAlloc.Count(), int(v.superblock.FileCount))
}

func TestWriteAtMaxLogicalBlockFails(t *testing.T) {
	v := newTestVolume(t)
	_, err := v.Create("huge.txt")
	require.NoError(t, err)

	offset := int64(layout.MaxLogicalBlock) * block.Size
	_, err = v.Write("huge.txt", offset, []byte("x"))
	assert.ErrorIs(t, err, errs.NoSpace)
}

func TestGetattrRoot(t *testing.T) {
	v := newTestVolume(t)
	stat, err := v.Getattr("/")
	require.NoError(t, err)
	assert.Equal(t, rootMode, stat.Mode)
}

func TestCheckConsistencyCleanOnFreshVolume(t *testing.T) {
	v := newTestVolume(t)
	assert.NoError(t, v.CheckConsistency())
}

func TestCheckConsistencyCleanWithDoubleIndirectBlock(t *testing.T) {
	// A file big enough to need the double-indirect block must not be
	// reported as a leak: the block itself has to be marked reachable, not
	// just the second-level tables it points at.
	v := newTestVolume(t)
	_, err := v.Create("huge.txt")
	require.NoError(t, err)

	offset := int64(layout.DoubleIndirectBase) * block.Size
	_, err = v.Write("huge.txt", offset, []byte("past the tables"))
	require.NoError(t, err)

	ino, err := v.lookupByName("huge.txt")
	require.NoError(t, err)
	require.NotEqual(t, layout.Unallocated, ino.DoubleIndirect)

	assert.NoError(t, v.CheckConsistency())
}

func nameFor(i int) string {
	return "file" + string(rune('a'+i%26)) + string(rune('0'+i%10)) + ".txt"
}
