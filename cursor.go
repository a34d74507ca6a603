// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// Cursor reads fixed-layout little-endian data out of a raw byte
// buffer with bounds checking. Every read that would run past the end
// of the buffer fails with ErrOutOfBounds; no read ever panics or
// silently truncates. Peek variants do not advance the position and
// are used to sniff format tags before committing to a decode path.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor returns a cursor positioned at the start of data. The
// cursor borrows data; it never writes to it.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.off
}

// Seek moves the read position to off.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return fmt.Errorf("seek to %d in %d-byte buffer: %w", off, len(c.data), ErrOutOfBounds)
	}
	c.off = off
	return nil
}

// need checks that n more bytes can be read at the current position.
func (c *Cursor) need(n int) error {
	if n < 0 || c.off+n > len(c.data) {
		return fmt.Errorf("read %d bytes at offset %d in %d-byte buffer: %w",
			n, c.off, len(c.data), ErrOutOfBounds)
	}
	return nil
}

// ReadU8 reads one unsigned byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.off]
	c.off++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.off:])
	c.off += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.off:])
	c.off += 4
	return v, nil
}

// ReadI16 reads a little-endian int16.
func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

// ReadI32 reads a little-endian int32.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// PeekU16 reads a little-endian uint16 without advancing.
func (c *Cursor) PeekU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(c.data[c.off:]), nil
}

// PeekU32 reads a little-endian uint32 without advancing.
func (c *Cursor) PeekU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.data[c.off:]), nil
}

// ReadBytes reads n bytes. The returned slice aliases the underlying
// buffer; callers that retain it past the decode call must copy.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.data[c.off : c.off+n]
	c.off += n
	return v, nil
}

// ReadCString reads a NUL-terminated string, consuming the terminator.
func (c *Cursor) ReadCString() (string, error) {
	for i := c.off; i < len(c.data); i++ {
		if c.data[i] == 0 {
			s := string(c.data[c.off:i])
			c.off = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("unterminated string at offset %d: %w", c.off, ErrOutOfBounds)
}

// ReadString8 reads a u8 length-prefixed string.
func (c *Cursor) ReadString8() (string, error) {
	n, err := c.ReadU8()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadStruct decodes a packed little-endian struct into v, which must
// be a pointer to a struct whose fields describe the on-disk layout.
// The struct is read at the current position and the cursor advances
// by its packed size.
func (c *Cursor) ReadStruct(v interface{}) error {
	size, err := restruct.SizeOf(v)
	if err != nil {
		return fmt.Errorf("size of %T: %w", v, err)
	}
	if err := c.need(size); err != nil {
		return err
	}
	if err := restruct.Unpack(c.data[c.off:c.off+size], binary.LittleEndian, v); err != nil {
		return fmt.Errorf("unpack %T at offset %d: %w", v, c.off, err)
	}
	c.off += size
	return nil
}

// PeekStruct decodes a packed struct without advancing the cursor.
func (c *Cursor) PeekStruct(v interface{}) error {
	off := c.off
	err := c.ReadStruct(v)
	c.off = off
	return err
}

// block bounds-checks a declared (offset, size) byte range against the
// whole buffer and returns it. A zero-size range yields a nil slice.
func (c *Cursor) block(offset, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	end := uint64(offset) + uint64(size)
	if end > uint64(len(c.data)) {
		return nil, fmt.Errorf("block [%d:%d) in %d-byte buffer: %w",
			offset, end, len(c.data), ErrOutOfBounds)
	}
	return c.data[offset:end], nil
}
