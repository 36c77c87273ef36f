// Package block is the thin block-device adapter described in spec §4.1: it
// turns an io.ReadWriteSeeker backing file into a fixed-size-block random
// access device. It knows nothing about inodes, bitmaps, or file names.
package block

import (
	"fmt"
	"io"
)

// Size is the fixed size, in bytes, of a single disk block. It's a
// build-time constant of the device, as in the original spec.
const Size = 512

// ID identifies a block by its position on the device, block 0 being the
// first byte of the backing stream.
type ID uint

// Device wraps a backing stream and exposes whole-block reads and writes.
//
// The exported fields are informational only and must never be mutated
// directly.
type Device struct {
	// TotalBlocks is the number of addressable blocks on the device.
	TotalBlocks uint
	stream      io.ReadWriteSeeker
}

// New wraps stream as a Device with room for totalBlocks blocks of Size
// bytes each.
func New(stream io.ReadWriteSeeker, totalBlocks uint) *Device {
	return &Device{TotalBlocks: totalBlocks, stream: stream}
}

func (d *Device) offsetOf(id ID) int64 {
	return int64(id) * Size
}

// ReadBlock reads exactly one Size-byte block at id.
//
// Per spec §4.1, reading past the end of the backing stream (e.g. on a
// freshly created, still-empty file) is not an error here: the caller gets
// back a zero-padded Size-byte buffer and a byte count below Size, which
// init() uses to detect a fresh volume.
func (d *Device) ReadBlock(id ID) ([]byte, int, error) {
	if uint(id) >= d.TotalBlocks {
		return nil, 0, fmt.Errorf("block %d out of range [0, %d)", id, d.TotalBlocks)
	}

	if _, err := d.stream.Seek(d.offsetOf(id), io.SeekStart); err != nil {
		return nil, 0, err
	}

	buf := make([]byte, Size)
	n, err := io.ReadFull(d.stream, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, n, err
	}
	return buf, n, nil
}

// WriteBlock writes exactly one Size-byte block at id. data must be exactly
// Size bytes.
func (d *Device) WriteBlock(id ID, data []byte) error {
	if uint(id) >= d.TotalBlocks {
		return fmt.Errorf("block %d out of range [0, %d)", id, d.TotalBlocks)
	}
	if len(data) != Size {
		return fmt.Errorf("block write must be exactly %d bytes, got %d", Size, len(data))
	}

	if _, err := d.stream.Seek(d.offsetOf(id), io.SeekStart); err != nil {
		return err
	}
	_, err := d.stream.Write(data)
	return err
}
