package alloc

import "github.com/mirelfs/sfs/block"

// blockDevice is the slice of block.Device's API the allocators need. Tests
// substitute a fake; production code passes a real *block.Device.
type blockDevice interface {
	ReadBlock(id block.ID) ([]byte, int, error)
	WriteBlock(id block.ID, data []byte) error
}
