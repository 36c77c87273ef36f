package alloc

import (
	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// DataBlockAllocator manages the layout.NumDataBlocks payload blocks, whose
// free/used flags are spread across layout.NumMetadataBlocks bitmap blocks
// of layout.FlagsPerMetadataBlock flags each.
type DataBlockAllocator struct {
	dev blockDevice
}

// NewDataBlockAllocator returns an allocator reading/writing through dev.
func NewDataBlockAllocator(dev blockDevice) *DataBlockAllocator {
	return &DataBlockAllocator{dev: dev}
}

// Allocate finds the first free data block across every bitmap block, marks
// it in use, and returns its absolute block ID. It reports errs.NoSpace
// once every data block is taken.
func (a *DataBlockAllocator) Allocate() (block.ID, error) {
	for i := 0; i < layout.NumMetadataBlocks; i++ {
		bitmapBlock := layout.MetadataStart + block.ID(i)
		flags, _, err := a.dev.ReadBlock(bitmapBlock)
		if err != nil {
			return 0, err
		}

		idx, err := scanFree(flags, 0)
		if err != nil {
			continue
		}
		if err := setUsed(flags, idx); err != nil {
			continue
		}
		if err := a.dev.WriteBlock(bitmapBlock, flags); err != nil {
			return 0, err
		}
		return layout.DataStart + block.ID(i*layout.FlagsPerMetadataBlock+idx), nil
	}
	return 0, errs.NoSpace
}

// Count returns how many data blocks are currently allocated, scanning every
// bitmap block. Used by consistency checks (spec §8 invariant on bitmap
// popcount matching live allocations).
func (a *DataBlockAllocator) Count() (int, error) {
	n := 0
	for i := 0; i < layout.NumMetadataBlocks; i++ {
		flags, _, err := a.dev.ReadBlock(layout.MetadataStart + block.ID(i))
		if err != nil {
			return 0, err
		}
		for _, f := range flags {
			if f == layout.InUse {
				n++
			}
		}
	}
	return n, nil
}

// Free releases the data block at id.
func (a *DataBlockAllocator) Free(id block.ID) error {
	offset := int(id - layout.DataStart)
	if offset < 0 || offset >= layout.NumDataBlocks {
		return errs.InvalidBlock
	}

	bitmapIdx := offset / layout.FlagsPerMetadataBlock
	flagIdx := offset % layout.FlagsPerMetadataBlock
	bitmapBlock := layout.MetadataStart + block.ID(bitmapIdx)

	flags, _, err := a.dev.ReadBlock(bitmapBlock)
	if err != nil {
		return err
	}
	if err := setFree(flags, flagIdx); err != nil {
		return err
	}
	return a.dev.WriteBlock(bitmapBlock, flags)
}
