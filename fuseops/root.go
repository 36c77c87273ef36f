package fuseops

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/mirelfs/sfs/volume"
)

// Root is the volume's single directory node. Every regular file is a
// direct child of it; there is no further hierarchy (spec §4.9's flat
// namespace, mkdir/rmdir/opendir/releasedir are no-ops).
type Root struct {
	fs.Inode
	vol *volume.Volume
}

var (
	_ fs.NodeLookuper  = (*Root)(nil)
	_ fs.NodeGetattrer = (*Root)(nil)
	_ fs.NodeCreater   = (*Root)(nil)
	_ fs.NodeUnlinker  = (*Root)(nil)
	_ fs.NodeReaddirer = (*Root)(nil)
)

// NewRoot wraps vol as the root of a go-fuse mount.
func NewRoot(vol *volume.Volume) *Root {
	return &Root{vol: vol}
}

func fillAttr(out *fuse.Attr, stat volume.Stat) {
	out.Mode = stat.Mode
	out.Size = uint64(stat.Size)
	out.Nlink = uint32(stat.LinkCount)
	out.SetTimes(&stat.AccessTime, &stat.ModifyTime, &stat.ChangeTime)
}

func (r *Root) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	stat, err := r.vol.Getattr("/")
	if err != nil {
		return errnoFrom(err)
	}
	fillAttr(&out.Attr, stat)
	return 0
}

func (r *Root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	stat, err := r.vol.Getattr(name)
	if err != nil {
		return nil, errnoFrom(err)
	}

	fillAttr(&out.Attr, stat)
	child := r.NewInode(ctx, &FileNode{vol: r.vol, name: name}, fs.StableAttr{Mode: stat.Mode})
	return child, 0
}

func (r *Root) Create(
	ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut,
) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	// The requested mode is ignored: spec §4.8 fixes every created file's
	// mode to a regular file with full rwx; this format has no per-file
	// permission bits to honor.
	ino, err := r.vol.Create(name)
	if err != nil {
		return nil, nil, 0, errnoFrom(err)
	}

	stat, err := r.vol.Getattr(name)
	if err != nil {
		return nil, nil, 0, errnoFrom(err)
	}
	fillAttr(&out.Attr, stat)

	child := r.NewInode(ctx, &FileNode{vol: r.vol, name: name}, fs.StableAttr{Mode: ino.Mode})
	return child, nil, 0, 0
}

func (r *Root) Unlink(ctx context.Context, name string) syscall.Errno {
	return errnoFrom(r.vol.Unlink(name))
}

func (r *Root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := r.vol.Readdir()
	if err != nil {
		return nil, errnoFrom(err)
	}

	fuseEntries := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		fuseEntries = append(fuseEntries, fuse.DirEntry{Name: e.Name, Mode: e.Mode, Ino: uint64(e.Inode) + 1})
	}
	return fs.NewListDirStream(fuseEntries), 0
}
