package fuseops

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/mirelfs/sfs/volume"
)

// FileNode represents one regular file. Per spec §6.2, open/release keep no
// state of their own — every read and write re-resolves the file by name
// against the volume, so FileHandle is always nil here.
type FileNode struct {
	fs.Inode
	vol  *volume.Volume
	name string
}

var (
	_ fs.NodeGetattrer = (*FileNode)(nil)
	_ fs.NodeOpener    = (*FileNode)(nil)
	_ fs.NodeReader    = (*FileNode)(nil)
	_ fs.NodeWriter    = (*FileNode)(nil)
)

func (n *FileNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	stat, err := n.vol.Getattr(n.name)
	if err != nil {
		return errnoFrom(err)
	}
	fillAttr(&out.Attr, stat)
	return 0
}

func (n *FileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if _, err := n.vol.Getattr(n.name); err != nil {
		return nil, 0, errnoFrom(err)
	}
	return nil, 0, 0
}

func (n *FileNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	nRead, err := n.vol.Read(n.name, off, dest)
	if err != nil {
		return nil, errnoFrom(err)
	}
	return fuse.ReadResultData(dest[:nRead]), 0
}

func (n *FileNode) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.vol.Write(n.name, off, data)
	if err != nil {
		return uint32(written), errnoFrom(err)
	}
	return uint32(written), 0
}
