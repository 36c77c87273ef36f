// Package layout defines the on-disk geometry and record formats described
// in spec §3.1/§3.2/§6.1: the region boundaries within the device, and the
// fixed-size binary records stored in each region.
//
// Every block on the device is exactly block.Size (512) bytes. Layout and
// record sizes are chosen so that no region ever straddles a block boundary,
// matching the original C structures byte-for-byte in spirit if not in
// exact padding.
package layout

import "github.com/mirelfs/sfs/block"

// Magic identifies a valid volume. It's written to the superblock on first
// mount and checked on every subsequent one.
const Magic = int32(987)

// Region layout. Counts are in blocks.
const (
	// NumNodes is the maximum number of files the volume can hold.
	NumNodes = 128
	// NodeStart is the first block of the inode table; one inode per block.
	NodeStart = block.ID(1)

	// NumIndirectBlocks is the size of the single-indirect block pool.
	NumIndirectBlocks = 192
	// IndirStart is the first block of the indirect-block pool.
	IndirStart = block.ID(NodeStart) + NumNodes

	// DoubleIndirBlock is the one double-indirect block on the volume.
	DoubleIndirBlock = block.ID(IndirStart) + NumIndirectBlocks

	// NumMetadataBlocks is the number of data-block bitmap blocks; each one
	// holds block.Size one-byte flags.
	NumMetadataBlocks = 56
	// FlagsPerMetadataBlock is the number of data-block bitmap flags packed
	// into a single metadata block.
	FlagsPerMetadataBlock = block.Size
	// MetadataStart is the first data-block bitmap block.
	MetadataStart = block.ID(DoubleIndirBlock) + 1

	// IndirMetadataBlock holds the free/used flags for the indirect pool
	// (NumIndirectBlocks of them) plus one trailing flag for the
	// double-indirect block.
	IndirMetadataBlock = block.ID(MetadataStart) + NumMetadataBlocks

	// DataStart is the first block available for file payload.
	DataStart = block.ID(IndirMetadataBlock) + 1

	// NumDataBlocks is the total number of payload blocks on the volume.
	NumDataBlocks = NumMetadataBlocks * FlagsPerMetadataBlock

	// DiskEnd is the first block past the end of the volume (not inclusive).
	DiskEnd = block.ID(DataStart) + NumDataBlocks
)

// Addressing capacities from spec §4.4.
const (
	// DirectPointers is the number of direct block slots in an inode.
	DirectPointers = 32
	// IndirectTables is the number of single-indirect table slots in an
	// inode.
	IndirectTables = 64
	// PointersPerIndirectBlock is the number of block pointers held by one
	// indirect (or double-indirect) block.
	PointersPerIndirectBlock = 128

	// SingleIndirectBase is the first logical block index addressed through
	// the single-indirect tables.
	SingleIndirectBase = DirectPointers
	// DoubleIndirectBase is the first logical block index addressed through
	// the double-indirect block.
	DoubleIndirectBase = SingleIndirectBase + IndirectTables*PointersPerIndirectBlock
	// MaxLogicalBlock is the first logical block index beyond the
	// addressable range of a file; attempts to write at or past this index
	// fail with no-space.
	MaxLogicalBlock = DoubleIndirectBase + PointersPerIndirectBlock*PointersPerIndirectBlock
)

// MaxNameLength is the longest file name (not counting the zero terminator)
// that create() will accept, per spec §4.3/§4.8.
const MaxNameLength = 49

// Unallocated is the sentinel stored in any unused pointer slot.
const Unallocated = int32(-1)

// Free and InUse are the on-disk byte values for allocator bitmap flags.
// Spec §3.1/§9: this ASCII encoding is part of the on-disk format and must
// not be replaced with a bit-packed one.
const (
	Free  = byte('0')
	InUse = byte('1')
)
