package volume

import (
	"github.com/mirelfs/sfs/block"
)

// Read implements spec §4.5: it returns up to len(buf) bytes starting at
// offset, capped at the inode's recorded size. A logical block that was
// never allocated (a hole left by a sparse write) reads back as zeros
// rather than erroring.
func (v *Volume) Read(name string, offset int64, buf []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ino, err := v.lookupByName(name)
	if err != nil {
		return 0, err
	}
	ino.AccessTime = now()
	defer func() { _ = v.writeInode(&ino) }()

	if offset >= ino.Size || len(buf) == 0 {
		for i := range buf {
			buf[i] = 0
		}
		return 0, nil
	}

	toRead := int64(len(buf))
	if offset+toRead > ino.Size {
		toRead = ino.Size - offset
	}

	// Pad the tail of the caller's buffer with zeros up to the requested
	// size (spec §4.5): anything beyond what EOF allows us to copy.
	for i := toRead; i < int64(len(buf)); i++ {
		buf[i] = 0
	}

	var total int
	remaining := toRead
	pos := offset

	for remaining > 0 {
		logical := int(pos / block.Size)
		blockOffset := int(pos % block.Size)

		chunk := int64(block.Size - blockOffset)
		if chunk > remaining {
			chunk = remaining
		}

		dst := buf[total : int64(total)+chunk]

		phys, _, err := v.resolve(&ino, logical, false)
		if err != nil {
			return total, err
		}
		if phys == 0 {
			for i := range dst {
				dst[i] = 0
			}
		} else {
			data, _, err := v.dev.ReadBlock(phys)
			if err != nil {
				return total, err
			}
			copy(dst, data[blockOffset:int64(blockOffset)+chunk])
		}

		total += int(chunk)
		remaining -= chunk
		pos += chunk
	}

	return total, nil
}
