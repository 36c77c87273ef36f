package volume

import (
	"time"

	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/layout"
)

// Stat is the attribute set returned by Getattr (spec §4.10): enough to
// answer a FUSE getattr call without exposing the on-disk record shape.
type Stat struct {
	Inode      int
	Mode       uint32
	LinkCount  int32
	Size       int64
	Blocks     int64
	AccessTime time.Time
	ModifyTime time.Time
	ChangeTime time.Time
}

const rootMode = uint32(0040755) // S_IFDIR | 0755

// Getattr implements spec §4.10. The volume root ("/" or "") has no inode
// record of its own — it's synthesized as a directory, since the flat
// namespace stores every regular file as a direct child of it.
func (v *Volume) Getattr(name string) (Stat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if trimName(name) == "" {
		return Stat{Mode: rootMode, LinkCount: 2}, nil
	}

	ino, err := v.lookupByName(name)
	if err != nil {
		return Stat{}, err
	}
	return statFromInode(&ino), nil
}

func statFromInode(ino *layout.Inode) Stat {
	return Stat{
		Inode:      ino.Index,
		Mode:       ino.Mode,
		LinkCount:  ino.LinkCount,
		Size:       ino.Size,
		Blocks:     (ino.Size + block.Size - 1) / block.Size,
		AccessTime: ino.AccessTime,
		ModifyTime: ino.ModifyTime,
		ChangeTime: ino.ChangeTime,
	}
}
