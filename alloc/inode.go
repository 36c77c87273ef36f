package alloc

import "github.com/mirelfs/sfs/layout"

// InodeAllocator manages the inode-allocation bitmap carried inside the
// superblock (spec §3.2). It operates purely in memory; the caller is
// responsible for persisting the superblock block afterward.
type InodeAllocator struct {
	flags *[layout.NumNodes]byte
}

// NewInodeAllocator wraps the superblock's node list.
func NewInodeAllocator(flags *[layout.NumNodes]byte) *InodeAllocator {
	return &InodeAllocator{flags: flags}
}

// Allocate returns the index of the first free inode slot and marks it in
// use. It reports errs.NoSpace once all NumNodes slots are taken — the
// 129th file boundary named in spec §8.
func (a *InodeAllocator) Allocate() (int, error) {
	idx, err := scanFree(a.flags[:], 0)
	if err != nil {
		return 0, err
	}
	if err := setUsed(a.flags[:], idx); err != nil {
		return 0, err
	}
	return idx, nil
}

// Free releases an allocated inode slot.
func (a *InodeAllocator) Free(idx int) error {
	return setFree(a.flags[:], idx)
}

// InUse reports whether the inode at idx is currently allocated.
func (a *InodeAllocator) InUse(idx int) bool {
	return a.flags[idx] == layout.InUse
}

// Count returns how many inode slots are currently allocated.
func (a *InodeAllocator) Count() int {
	n := 0
	for _, f := range a.flags {
		if f == layout.InUse {
			n++
		}
	}
	return n
}
