// Package alloc implements the three bitmap-backed allocators named in spec
// §4.2: one for inodes, one for the indirect-block pool (including the
// single double-indirect block), and one for data blocks.
//
// Spec §3.1/§9 mandates that the on-disk bitmap encoding is ASCII: each slot
// is a whole byte, '0' for free and '1' for in use, not a packed bit. The
// scan-and-flip algorithm below is the same first-fit linear scan the
// teacher's drivers/common/blockmanager.go uses over a packed bitmap; only
// the storage representation changes.
package alloc

import (
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// scanFree returns the index of the first free ('0') flag in flags,
// starting the search at from. It reports errs.NoSpace if none is free.
func scanFree(flags []byte, from int) (int, error) {
	for i := from; i < len(flags); i++ {
		if flags[i] == layout.Free {
			return i, nil
		}
	}
	for i := 0; i < from; i++ {
		if flags[i] == layout.Free {
			return i, nil
		}
	}
	return 0, errs.NoSpace
}

// setUsed marks flags[idx] allocated. It reports errs.Exists if the
// slot is already marked in use, the way the teacher's allocator rejects a
// double-allocation of the same slot.
func setUsed(flags []byte, idx int) error {
	if flags[idx] == layout.InUse {
		return errs.Exists.WithMessage("bitmap slot already allocated")
	}
	flags[idx] = layout.InUse
	return nil
}

// setFree marks flags[idx] free. It reports errs.AlreadyFree if the slot
// was already free, matching the teacher's FreeBlock double-free check.
func setFree(flags []byte, idx int) error {
	if flags[idx] == layout.Free {
		return errs.AlreadyFree
	}
	flags[idx] = layout.Free
	return nil
}
