package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// fakeDevice is a minimal in-memory blockDevice for allocator tests.
type fakeDevice struct {
	blocks map[block.ID][]byte
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{blocks: make(map[block.ID][]byte)}
}

func (f *fakeDevice) ReadBlock(id block.ID) ([]byte, int, error) {
	data, ok := f.blocks[id]
	if !ok {
		data = make([]byte, block.Size)
		for i := range data {
			data[i] = layout.Free
		}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, len(cp), nil
}

func (f *fakeDevice) WriteBlock(id block.ID, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.blocks[id] = cp
	return nil
}

func TestInodeAllocatorFirstFitAndReuse(t *testing.T) {
	var flags [layout.NumNodes]byte
	for i := range flags {
		flags[i] = layout.Free
	}
	a := NewInodeAllocator(&flags)

	idx, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx2, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 1, idx2)

	require.NoError(t, a.Free(idx))
	idx3, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 0, idx3)
}

func TestInodeAllocatorExhaustion(t *testing.T) {
	var flags [layout.NumNodes]byte
	for i := range flags {
		flags[i] = layout.Free
	}
	a := NewInodeAllocator(&flags)
	for i := 0; i < layout.NumNodes; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	_, err := a.Allocate()
	assert.ErrorIs(t, err, errs.NoSpace)
}

func TestIndirectAllocatorTableAndDouble(t *testing.T) {
	dev := newFakeDevice()
	a := NewIndirectAllocator(dev)

	id, err := a.AllocateTable()
	require.NoError(t, err)
	assert.Equal(t, layout.IndirStart, id)

	require.NoError(t, a.FreeTable(id))

	dbl, err := a.AllocateDouble()
	require.NoError(t, err)
	assert.Equal(t, layout.DoubleIndirBlock, dbl)

	_, err = a.AllocateDouble()
	assert.Error(t, err)
}

func TestDataBlockAllocatorFirstFitAndReuse(t *testing.T) {
	dev := newFakeDevice()
	a := NewDataBlockAllocator(dev)

	first, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, layout.DataStart, first)

	second, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, layout.DataStart+1, second)

	require.NoError(t, a.Free(first))

	reused, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, first, reused)
}

func TestDataBlockAllocatorExhaustion(t *testing.T) {
	dev := newFakeDevice()
	a := NewDataBlockAllocator(dev)

	for i := 0; i < layout.NumDataBlocks; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	_, err := a.Allocate()
	assert.ErrorIs(t, err, errs.NoSpace)
}
