package alloc

import (
	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// indirectFlagCount is the number of flags packed into the indirect-pool
// bitmap block: one per single-indirect table, plus one trailing flag for
// the lone double-indirect block (spec §3.1).
const indirectFlagCount = layout.NumIndirectBlocks + 1

// doubleIndirectFlag is the index, within that block, of the flag for the
// double-indirect block.
const doubleIndirectFlag = layout.NumIndirectBlocks

// IndirectAllocator manages allocation of single-indirect tables and of the
// one double-indirect block, both tracked in the single bitmap block at
// layout.IndirMetadataBlock.
type IndirectAllocator struct {
	dev blockDevice
}

// NewIndirectAllocator returns an allocator reading/writing through dev.
func NewIndirectAllocator(dev blockDevice) *IndirectAllocator {
	return &IndirectAllocator{dev: dev}
}

func (a *IndirectAllocator) load() ([]byte, error) {
	data, _, err := a.dev.ReadBlock(layout.IndirMetadataBlock)
	if err != nil {
		return nil, err
	}
	if len(data) < indirectFlagCount {
		data = append(data, make([]byte, indirectFlagCount-len(data))...)
	}
	return data, nil
}

func (a *IndirectAllocator) store(data []byte) error {
	return a.dev.WriteBlock(layout.IndirMetadataBlock, data)
}

// AllocateTable allocates one of the NumIndirectBlocks single-indirect
// tables and returns its absolute block ID.
func (a *IndirectAllocator) AllocateTable() (block.ID, error) {
	data, err := a.load()
	if err != nil {
		return 0, err
	}

	idx, err := scanFree(data[:layout.NumIndirectBlocks], 0)
	if err != nil {
		return 0, err
	}
	if err := setUsed(data, idx); err != nil {
		return 0, err
	}
	if err := a.store(data); err != nil {
		return 0, err
	}
	return layout.IndirStart + block.ID(idx), nil
}

// FreeTable releases the single-indirect table at id.
func (a *IndirectAllocator) FreeTable(id block.ID) error {
	data, err := a.load()
	if err != nil {
		return err
	}
	idx := int(id - layout.IndirStart)
	if err := setFree(data, idx); err != nil {
		return err
	}
	return a.store(data)
}

// AllocateDouble allocates the single double-indirect block. It reports
// errs.NoSpace if it's already allocated, since there is only ever one to
// give out.
func (a *IndirectAllocator) AllocateDouble() (block.ID, error) {
	data, err := a.load()
	if err != nil {
		return 0, err
	}
	if data[doubleIndirectFlag] == layout.InUse {
		return 0, errs.NoSpace.WithMessage("double-indirect block already in use")
	}
	if err := setUsed(data, doubleIndirectFlag); err != nil {
		return 0, err
	}
	if err := a.store(data); err != nil {
		return 0, err
	}
	return layout.DoubleIndirBlock, nil
}

// FreeDouble releases the double-indirect block.
func (a *IndirectAllocator) FreeDouble() error {
	data, err := a.load()
	if err != nil {
		return err
	}
	if err := setFree(data, doubleIndirectFlag); err != nil {
		return err
	}
	return a.store(data)
}
