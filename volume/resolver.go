package volume

import (
	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// resolve maps a file-relative logical block index to a physical block ID,
// walking the three addressing levels described in spec §4.4: direct
// pointers, then the single-indirect tables, then the double-indirect
// block. Both the single-indirect tables and the second-level tables
// reachable through the double-indirect block are drawn from the same
// shared pool of layout.NumIndirectBlocks blocks — the layout defines only
// one such pool for the whole volume, not one per file.
//
// When allocate is true, any missing pointer along the path (direct slot,
// indirect table, double-indirect block, or leaf data block) is allocated
// lazily, per spec §4.6. When allocate is false (the read path), a missing
// pointer resolves to (0, false, nil): the caller treats it as a hole and
// returns zero bytes.
func (v *Volume) resolve(ino *layout.Inode, logical int, allocate bool) (block.ID, bool, error) {
	if logical < 0 || logical >= layout.MaxLogicalBlock {
		return 0, false, errs.NoSpace.WithMessage("logical block out of addressable range")
	}

	switch {
	case logical < layout.SingleIndirectBase:
		return v.resolveDirect(ino, logical, allocate)
	case logical < layout.DoubleIndirectBase:
		return v.resolveSingleIndirect(ino, logical, allocate)
	default:
		return v.resolveDoubleIndirect(ino, logical, allocate)
	}
}

func (v *Volume) resolveDirect(ino *layout.Inode, logical int, allocate bool) (block.ID, bool, error) {
	ptr := ino.Direct[logical]
	if ptr != layout.Unallocated {
		return block.ID(ptr), false, nil
	}
	if !allocate {
		return 0, false, nil
	}

	id, err := v.dataAlloc.Allocate()
	if err != nil {
		return 0, false, err
	}
	ino.Direct[logical] = int32(id)
	return id, true, nil
}

func (v *Volume) resolveSingleIndirect(ino *layout.Inode, logical int, allocate bool) (block.ID, bool, error) {
	rel := logical - layout.SingleIndirectBase
	tableSlot := rel / layout.PointersPerIndirectBlock
	ptrIdx := rel % layout.PointersPerIndirectBlock

	tableID, allocatedTable, err := v.ensureTable(&ino.SingleIndirect[tableSlot], allocate)
	if err != nil {
		return 0, false, err
	}
	if tableID == 0 && !allocatedTable {
		return 0, false, nil
	}

	return v.resolveLeaf(tableID, ptrIdx, allocate)
}

func (v *Volume) resolveDoubleIndirect(ino *layout.Inode, logical int, allocate bool) (block.ID, bool, error) {
	rel := logical - layout.DoubleIndirectBase
	tableSlot := rel / layout.PointersPerIndirectBlock
	ptrIdx := rel % layout.PointersPerIndirectBlock

	if ino.DoubleIndirect == layout.Unallocated {
		if !allocate {
			return 0, false, nil
		}
		id, err := v.indirAlloc.AllocateDouble()
		if err != nil {
			return 0, false, err
		}
		empty := layout.NewEmptyIndirectBlock()
		if err := v.writeIndirectBlock(id, &empty); err != nil {
			return 0, false, err
		}
		ino.DoubleIndirect = int32(id)
	}

	dbl, err := v.readIndirectBlock(block.ID(ino.DoubleIndirect))
	if err != nil {
		return 0, false, err
	}

	tableID, allocatedTable, err := v.ensureTable(&dbl.Pointers[tableSlot], allocate)
	if err != nil {
		return 0, false, err
	}
	if allocatedTable {
		if err := v.writeIndirectBlock(block.ID(ino.DoubleIndirect), &dbl); err != nil {
			return 0, false, err
		}
	}
	if tableID == 0 && !allocatedTable {
		return 0, false, nil
	}

	return v.resolveLeaf(tableID, ptrIdx, allocate)
}

// ensureTable resolves a pointer slot that names an indirect table
// (single-indirect from an inode, or second-level from the double-indirect
// block), allocating one if allocate is set and the slot is empty.
func (v *Volume) ensureTable(slot *int32, allocate bool) (block.ID, bool, error) {
	if *slot != layout.Unallocated {
		return block.ID(*slot), false, nil
	}
	if !allocate {
		return 0, false, nil
	}

	id, err := v.indirAlloc.AllocateTable()
	if err != nil {
		return 0, false, err
	}
	empty := layout.NewEmptyIndirectBlock()
	if err := v.writeIndirectBlock(id, &empty); err != nil {
		return 0, false, err
	}
	*slot = int32(id)
	return id, true, nil
}

func (v *Volume) resolveLeaf(tableID block.ID, ptrIdx int, allocate bool) (block.ID, bool, error) {
	table, err := v.readIndirectBlock(tableID)
	if err != nil {
		return 0, false, err
	}

	if table.Pointers[ptrIdx] != layout.Unallocated {
		return block.ID(table.Pointers[ptrIdx]), false, nil
	}
	if !allocate {
		return 0, false, nil
	}

	dataID, err := v.dataAlloc.Allocate()
	if err != nil {
		return 0, false, err
	}
	table.Pointers[ptrIdx] = int32(dataID)
	if err := v.writeIndirectBlock(tableID, &table); err != nil {
		return 0, false, err
	}
	return dataID, true, nil
}

func (v *Volume) readIndirectBlock(id block.ID) (layout.IndirectBlock, error) {
	data, _, err := v.dev.ReadBlock(id)
	if err != nil {
		return layout.IndirectBlock{}, err
	}
	var ib layout.IndirectBlock
	if err := ib.UnmarshalBinary(data); err != nil {
		return layout.IndirectBlock{}, err
	}
	return ib, nil
}

func (v *Volume) writeIndirectBlock(id block.ID, ib *layout.IndirectBlock) error {
	data, err := ib.MarshalBinary()
	if err != nil {
		return err
	}
	return v.dev.WriteBlock(id, data)
}
