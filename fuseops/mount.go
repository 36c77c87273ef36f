package fuseops

import (
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/mirelfs/sfs/volume"
)

// Mount implements spec §4.11's init(): it attaches vol at mountpoint and
// returns the running server. Callers block on server.Wait() (or call
// server.Unmount() to detach) and then call vol.Destroy() themselves
// (spec's destroy()); the server does not call it.
func Mount(vol *volume.Volume, mountpoint string, debug bool) (*fuse.Server, error) {
	root := NewRoot(vol)
	options := &fs.Options{}
	options.Debug = debug

	server, err := fs.Mount(mountpoint, root, options)
	if err != nil {
		return nil, err
	}
	return server, nil
}
