package volume

import (
	"github.com/hashicorp/go-multierror"

	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/layout"
)

// Unlink implements spec §4.7: it releases every data block, indirect
// table, and the double-indirect block (if any) reachable from name's
// inode, then frees the inode slot itself.
//
// Freeing continues even if an individual block free fails — matching the
// teacher's preference for reporting every problem rather than stopping at
// the first — and every failure is folded into one returned error via
// go-multierror.
func (v *Volume) Unlink(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	ino, err := v.lookupByName(name)
	if err != nil {
		return err
	}

	var result *multierror.Error

	for _, ptr := range ino.Direct {
		if ptr == layout.Unallocated {
			continue
		}
		if err := v.dataAlloc.Free(block.ID(ptr)); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, tablePtr := range ino.SingleIndirect {
		if tablePtr == layout.Unallocated {
			continue
		}
		if err := v.freeIndirectTable(block.ID(tablePtr)); err != nil {
			result = multierror.Append(result, err)
		}
		if err := v.indirAlloc.FreeTable(block.ID(tablePtr)); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if ino.DoubleIndirect != layout.Unallocated {
		dbl, err := v.readIndirectBlock(block.ID(ino.DoubleIndirect))
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			for _, tablePtr := range dbl.Pointers {
				if tablePtr == layout.Unallocated {
					continue
				}
				if err := v.freeIndirectTable(block.ID(tablePtr)); err != nil {
					result = multierror.Append(result, err)
				}
				if err := v.indirAlloc.FreeTable(block.ID(tablePtr)); err != nil {
					result = multierror.Append(result, err)
				}
			}
		}
		if err := v.indirAlloc.FreeDouble(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := v.inodeAlloc.Free(ino.Index); err != nil {
		result = multierror.Append(result, err)
	} else {
		v.superblock.FileCount--
	}
	if err := v.writeSuperblock(); err != nil {
		result = multierror.Append(result, err)
	}

	v.logf("unlinked %q (inode %d)", name, ino.Index)
	return result.ErrorOrNil()
}

// freeIndirectTable releases every data block named by one indirect table.
func (v *Volume) freeIndirectTable(tableID block.ID) error {
	table, err := v.readIndirectBlock(tableID)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, ptr := range table.Pointers {
		if ptr == layout.Unallocated {
			continue
		}
		if err := v.dataAlloc.Free(block.ID(ptr)); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
