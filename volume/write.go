package volume

import (
	"github.com/mirelfs/sfs/block"
)

// Write implements spec §4.6: it writes data at offset, allocating any
// direct, indirect, or data block needed along the way (lazy allocation),
// and returns the number of bytes written.
//
// Per spec §9, the inode's size is updated as max(existingSize,
// offset+written) rather than added to the previous size on every write —
// the original's additive update is flagged there as a bug; a second write
// to the same range must not inflate the reported size.
func (v *Volume) Write(name string, offset int64, data []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ino, err := v.lookupByName(name)
	if err != nil {
		return 0, err
	}

	var total int
	remaining := int64(len(data))
	pos := offset

	for remaining > 0 {
		logical := int(pos / block.Size)
		blockOffset := int(pos % block.Size)

		chunk := int64(block.Size - blockOffset)
		if chunk > remaining {
			chunk = remaining
		}

		phys, _, err := v.resolve(&ino, logical, true)
		if err != nil {
			// Partial allocation along the path up to this point is not
			// rolled back, matching spec §9: a write that runs out of
			// space midway keeps whatever blocks it already claimed.
			if werr := v.writeInode(&ino); werr != nil {
				return total, werr
			}
			return total, err
		}

		var buf []byte
		if blockOffset != 0 || chunk != block.Size {
			existing, _, err := v.dev.ReadBlock(phys)
			if err != nil {
				return total, err
			}
			buf = existing
		} else {
			buf = make([]byte, block.Size)
		}

		copy(buf[blockOffset:int64(blockOffset)+chunk], data[total:int64(total)+chunk])
		if err := v.dev.WriteBlock(phys, buf); err != nil {
			return total, err
		}

		total += int(chunk)
		remaining -= chunk
		pos += chunk
	}

	if newEnd := offset + int64(total); newEnd > ino.Size {
		ino.Size = newEnd
	}
	t := now()
	ino.ModifyTime = t
	ino.ChangeTime = t

	if err := v.writeInode(&ino); err != nil {
		return total, err
	}
	return total, nil
}
