// Package fuseops is the host file-system binding named in spec §6.2. It
// translates the conceptual request handlers the core exposes (init,
// destroy, getattr, create, unlink, open/release, read, write, readdir,
// mkdir/rmdir/opendir/releasedir as no-ops) onto github.com/hanwen/go-fuse/v2's
// fs package.
//
// The teacher repo (github.com/dargueta/disko) has no FUSE code of its
// own; this package is grounded on KarpelesLab-squashfs's inode_fuse.go,
// the one file in the retrieval pack that binds a Go file system to
// go-fuse. That file targets the older, lower-level fuse.RawFileSystem
// surface; this package instead targets the newer fs.InodeEmbedder surface
// (the same library, same mount story, far fewer methods to get right) —
// see DESIGN.md for the reasoning.
package fuseops

import (
	"errors"
	"syscall"

	"github.com/mirelfs/sfs/errs"
)

// errnoFrom maps a volume error kind to the POSIX errno spec §7 says the
// host binding reports.
func errnoFrom(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, errs.NotFound):
		return syscall.ENOENT
	case errors.Is(err, errs.Exists):
		return syscall.EEXIST
	case errors.Is(err, errs.NameTooLong):
		return syscall.ENAMETOOLONG
	case errors.Is(err, errs.NoSpace):
		return syscall.ENOSPC
	case errors.Is(err, errs.BufferFull):
		return syscall.ENOBUFS
	case errors.Is(err, errs.InvalidVolume):
		return syscall.EINVAL
	case errors.Is(err, errs.InvalidBlock):
		return syscall.EIO
	default:
		return syscall.EIO
	}
}
