// Package volume implements the core of the single-file block-device file
// system described in spec §4: superblock lifecycle, the inode table, the
// three-level address resolver, the read and write engines, and the
// directory-less create/unlink/readdir/getattr operations.
//
// A flat namespace: every regular file lives directly under the volume
// root, and mkdir/rmdir are structural no-ops per spec §4.9/§9. This
// collapses the teacher's general hierarchical BaseDriver/CommonDriver down
// to the shape spec.md actually needs.
package volume

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/mirelfs/sfs/alloc"
	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// Volume is the open, mounted state of a single backing file. All exported
// operations are safe for concurrent use.
type Volume struct {
	mu  sync.Mutex
	dev *block.Device
	log *log.Logger

	superblock layout.Superblock
	inodeAlloc *alloc.InodeAllocator
	indirAlloc *alloc.IndirectAllocator
	dataAlloc  *alloc.DataBlockAllocator
}

// SetLogger overrides the package's default *log.Logger, matching the
// teacher's style of plumbing a *log.Logger through for tests to redirect
// (stdlib log only — see DESIGN.md).
func (v *Volume) SetLogger(l *log.Logger) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log = l
}

func (v *Volume) logf(format string, args ...interface{}) {
	if v.log != nil {
		v.log.Printf(format, args...)
	}
}

// Open mounts stream as a volume. If the backing stream is empty (a freshly
// created file), Open formats it fresh (spec §4.11 init()); otherwise it
// validates the magic number and loads the superblock (spec §7
// InvalidVolume on mismatch).
func Open(stream io.ReadWriteSeeker) (*Volume, error) {
	dev := block.New(stream, uint(layout.DiskEnd))

	v := &Volume{dev: dev, log: log.Default()}

	first, n, err := dev.ReadBlock(0)
	if err != nil {
		return nil, err
	}

	if n == 0 || allZero(first) {
		if err := v.format(); err != nil {
			return nil, err
		}
	} else {
		if err := v.superblock.UnmarshalBinary(first); err != nil {
			return nil, err
		}
		if v.superblock.Magic != layout.Magic {
			return nil, errs.InvalidVolume
		}
	}

	v.inodeAlloc = alloc.NewInodeAllocator(&v.superblock.NodeList)
	v.indirAlloc = alloc.NewIndirectAllocator(v.dev)
	v.dataAlloc = alloc.NewDataBlockAllocator(v.dev)
	return v, nil
}

func allZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// format writes a fresh superblock, an empty record for every inode slot,
// and marks every bitmap flag free ('0'), the way spec §4.11's init()
// formats a brand-new volume.
func (v *Volume) format() error {
	v.superblock = layout.Superblock{Magic: layout.Magic}
	for i := range v.superblock.NodeList {
		v.superblock.NodeList[i] = layout.Free
	}

	if err := v.writeSuperblock(); err != nil {
		return err
	}

	emptyInode := layout.NewEmptyInode(0)
	for i := 0; i < layout.NumNodes; i++ {
		emptyInode.Index = i
		if err := v.writeInode(&emptyInode); err != nil {
			return err
		}
	}

	freeFlags := make([]byte, block.Size)
	for i := range freeFlags {
		freeFlags[i] = layout.Free
	}
	for i := 0; i < layout.NumMetadataBlocks; i++ {
		if err := v.dev.WriteBlock(layout.MetadataStart+block.ID(i), freeFlags); err != nil {
			return err
		}
	}

	indirFlags := make([]byte, block.Size)
	for i := range indirFlags {
		indirFlags[i] = layout.Free
	}
	if err := v.dev.WriteBlock(layout.IndirMetadataBlock, indirFlags); err != nil {
		return err
	}

	v.logf("formatted fresh volume, magic=%d", layout.Magic)
	return nil
}

func (v *Volume) writeSuperblock() error {
	data, err := v.superblock.MarshalBinary()
	if err != nil {
		return err
	}
	return v.dev.WriteBlock(0, data)
}

func (v *Volume) readInode(index int) (layout.Inode, error) {
	data, _, err := v.dev.ReadBlock(layout.NodeStart + block.ID(index))
	if err != nil {
		return layout.Inode{}, err
	}
	var ino layout.Inode
	if err := ino.UnmarshalBinary(data); err != nil {
		return layout.Inode{}, err
	}
	ino.Index = index
	return ino, nil
}

func (v *Volume) writeInode(ino *layout.Inode) error {
	data, err := ino.MarshalBinary()
	if err != nil {
		return err
	}
	return v.dev.WriteBlock(layout.NodeStart+block.ID(ino.Index), data)
}

// Destroy flushes the superblock and releases the volume (spec §4.11
// destroy()). The backing stream itself is closed by the caller.
func (v *Volume) Destroy() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.logf("unmounting volume")
	return v.writeSuperblock()
}

func now() time.Time {
	return time.Now()
}
