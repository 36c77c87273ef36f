package volume

import (
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// regularFileMode is the mode every created file gets (spec §4.8:
// "regular-file with full user/group/other rwx"). The on-disk format has
// no notion of a caller-supplied permission bit set.
const regularFileMode = uint32(0100777) // S_IFREG | 0777

// Create implements spec §4.8: it allocates a free inode slot, stores the
// name, and leaves every pointer slot Unallocated and size zero. It reports
// errs.Exists if the name is already taken, and errs.NameTooLong if name
// exceeds layout.MaxNameLength bytes — both checked before consuming an
// inode slot, since §8 requires the 129th-file boundary to be exact.
func (v *Volume) Create(name string) (layout.Inode, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	name = trimName(name)
	if len(name) > layout.MaxNameLength {
		return layout.Inode{}, errs.NameTooLong
	}
	if name == "" {
		return layout.Inode{}, errs.Exists.WithMessage("root already exists")
	}

	if _, err := v.lookupByName(name); err == nil {
		return layout.Inode{}, errs.Exists
	}

	idx, err := v.inodeAlloc.Allocate()
	if err != nil {
		return layout.Inode{}, err
	}

	ino := layout.NewEmptyInode(idx)
	ino.Name = name
	ino.Mode = regularFileMode
	ino.LinkCount = 1
	t := now()
	ino.AccessTime, ino.ModifyTime, ino.ChangeTime = t, t, t

	if err := v.writeInode(&ino); err != nil {
		_ = v.inodeAlloc.Free(idx)
		return layout.Inode{}, err
	}
	v.superblock.FileCount++
	if err := v.writeSuperblock(); err != nil {
		return layout.Inode{}, err
	}

	v.logf("created %q at inode %d", name, idx)
	return ino, nil
}
