package volume

import (
	"strings"

	"github.com/mirelfs/sfs/errs"
	"github.com/mirelfs/sfs/layout"
)

// trimName strips a single leading slash, since every regular file lives
// directly under the volume root (spec §4.3/§4.9's flat namespace).
func trimName(path string) string {
	return strings.TrimPrefix(path, "/")
}

// lookupByName performs the linear scan over the inode table named in spec
// §4.3: the table is small enough (NumNodes = 128) that no secondary index
// is warranted, matching the original's own linear-scan lookup.
func (v *Volume) lookupByName(name string) (layout.Inode, error) {
	name = trimName(name)
	if name == "" {
		return layout.Inode{}, errs.NotFound.WithMessage("root has no inode record")
	}

	for i := 0; i < layout.NumNodes; i++ {
		if !v.inodeAlloc.InUse(i) {
			continue
		}
		ino, err := v.readInode(i)
		if err != nil {
			return layout.Inode{}, err
		}
		if ino.Name == name {
			return ino, nil
		}
	}
	return layout.Inode{}, errs.NotFound
}

// listAll returns every allocated inode, in table order. Used by readdir
// (spec §4.9) and dump.
func (v *Volume) listAll() ([]layout.Inode, error) {
	var out []layout.Inode
	for i := 0; i < layout.NumNodes; i++ {
		if !v.inodeAlloc.InUse(i) {
			continue
		}
		ino, err := v.readInode(i)
		if err != nil {
			return nil, err
		}
		out = append(out, ino)
	}
	return out, nil
}
