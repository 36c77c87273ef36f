package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/noxer/bytewriter"

	"github.com/mirelfs/sfs/block"
)

var order = binary.LittleEndian

// Superblock is the record stored in block 0: the volume's magic number,
// the count of inodes in use, and the inode-allocation bitmap (spec §3.2).
type Superblock struct {
	Magic     int32
	FileCount int32
	NodeList  [NumNodes]byte
}

// MarshalBinary encodes the superblock into a block.Size-byte buffer,
// writing fields in order the way format.go in the teacher repo sequences
// fields through a bytewriter ahead of binary.Write.
func (sb *Superblock) MarshalBinary() ([]byte, error) {
	buf := make([]byte, block.Size)
	w := bytewriter.New(buf)

	if err := binary.Write(w, order, sb.Magic); err != nil {
		return nil, err
	}
	if err := binary.Write(w, order, sb.FileCount); err != nil {
		return nil, err
	}
	if _, err := w.Write(sb.NodeList[:]); err != nil {
		return nil, err
	}
	return buf, nil
}

// UnmarshalBinary decodes a superblock from a block-sized buffer.
func (sb *Superblock) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := binary.Read(r, order, &sb.Magic); err != nil {
		return err
	}
	if err := binary.Read(r, order, &sb.FileCount); err != nil {
		return err
	}
	_, err := r.Read(sb.NodeList[:])
	return err
}

// rawInode is the exact binary shape of an on-disk inode record (spec
// §3.2). Name is fixed-width, zero-terminated, and capped at
// MaxNameLength+1 bytes including the terminator.
type rawInode struct {
	Index          int32
	Mode           uint32
	LinkCount      int32
	Size           int64
	AccessTime     int64
	ModifyTime     int64
	ChangeTime     int64
	Direct         [DirectPointers]int32
	SingleIndirect [IndirectTables]int32
	DoubleIndirect int32
	Name           [MaxNameLength + 1]byte
	Handle         int32
}

// Inode is the in-memory, friendlier form of rawInode: string name,
// time.Time timestamps.
type Inode struct {
	Index          int
	Mode           uint32
	LinkCount      int32
	Size           int64
	AccessTime     time.Time
	ModifyTime     time.Time
	ChangeTime     time.Time
	Direct         [DirectPointers]int32
	SingleIndirect [IndirectTables]int32
	DoubleIndirect int32
	Name           string
	Handle         int32
}

// NewEmptyInode returns an inode with every pointer slot set to Unallocated,
// as create() requires (spec §4.8).
func NewEmptyInode(index int) Inode {
	ino := Inode{Index: index, DoubleIndirect: Unallocated}
	for i := range ino.Direct {
		ino.Direct[i] = Unallocated
	}
	for i := range ino.SingleIndirect {
		ino.SingleIndirect[i] = Unallocated
	}
	return ino
}

func toRaw(ino *Inode) (rawInode, error) {
	if len(ino.Name) > MaxNameLength {
		return rawInode{}, fmt.Errorf("name %q exceeds %d bytes", ino.Name, MaxNameLength)
	}

	raw := rawInode{
		Index:          int32(ino.Index),
		Mode:           ino.Mode,
		LinkCount:      ino.LinkCount,
		Size:           ino.Size,
		AccessTime:     ino.AccessTime.Unix(),
		ModifyTime:     ino.ModifyTime.Unix(),
		ChangeTime:     ino.ChangeTime.Unix(),
		Direct:         ino.Direct,
		SingleIndirect: ino.SingleIndirect,
		DoubleIndirect: ino.DoubleIndirect,
		Handle:         ino.Handle,
	}
	copy(raw.Name[:], ino.Name)
	return raw, nil
}

func fromRaw(raw *rawInode) Inode {
	nameEnd := bytes.IndexByte(raw.Name[:], 0)
	if nameEnd < 0 {
		nameEnd = len(raw.Name)
	}

	return Inode{
		Index:          int(raw.Index),
		Mode:           raw.Mode,
		LinkCount:      raw.LinkCount,
		Size:           raw.Size,
		AccessTime:     time.Unix(raw.AccessTime, 0),
		ModifyTime:     time.Unix(raw.ModifyTime, 0),
		ChangeTime:     time.Unix(raw.ChangeTime, 0),
		Direct:         raw.Direct,
		SingleIndirect: raw.SingleIndirect,
		DoubleIndirect: raw.DoubleIndirect,
		Name:           string(raw.Name[:nameEnd]),
		Handle:         raw.Handle,
	}
}

// MarshalBinary encodes the inode into a block.Size-byte buffer.
func (ino *Inode) MarshalBinary() ([]byte, error) {
	raw, err := toRaw(ino)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, block.Size)
	w := bytewriter.New(buf)
	if err := binary.Write(w, order, &raw); err != nil {
		return nil, err
	}
	return buf, nil
}

// UnmarshalBinary decodes an inode from a block-sized buffer.
func (ino *Inode) UnmarshalBinary(data []byte) error {
	var raw rawInode
	r := bytes.NewReader(data)
	if err := binary.Read(r, order, &raw); err != nil {
		return err
	}
	*ino = fromRaw(&raw)
	return nil
}

// IndirectBlock is a table of PointersPerIndirectBlock block pointers. The
// same record shape is used for single-indirect tables and for the one
// double-indirect block (spec §3.2): in the latter, each slot names an
// indirect table instead of a data block.
type IndirectBlock struct {
	Pointers [PointersPerIndirectBlock]int32
}

// NewEmptyIndirectBlock returns an indirect block with every slot
// Unallocated, as required before it is linked into an inode (spec §4.2).
func NewEmptyIndirectBlock() IndirectBlock {
	ib := IndirectBlock{}
	for i := range ib.Pointers {
		ib.Pointers[i] = Unallocated
	}
	return ib
}

func (ib *IndirectBlock) MarshalBinary() ([]byte, error) {
	buf := make([]byte, block.Size)
	w := bytewriter.New(buf)
	if err := binary.Write(w, order, &ib.Pointers); err != nil {
		return nil, err
	}
	return buf, nil
}

func (ib *IndirectBlock) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	return binary.Read(r, order, &ib.Pointers)
}
