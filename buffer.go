// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"io"
)

// Buffer is a bytes.Buffer-like writer/reader whose storage grows through an
// Allocator. A nil allocator degrades to ordinary heap allocation.
type Buffer struct {
	alloc Allocator
	buf   []byte
	off   int // read position; buf[off:] is unread
}

// NewBuffer creates a Buffer drawing its storage from a.
func NewBuffer(a Allocator) *Buffer {
	return &Buffer{alloc: a}
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.buf = SliceAppend(b.alloc, b.buf, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	b.buf = SliceAppend(b.alloc, b.buf, c)
	return nil
}

// Read implements io.Reader.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.off >= len(b.buf) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.off:])
	b.off += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if b.off >= len(b.buf) {
		return 0, io.EOF
	}
	c := b.buf[b.off]
	b.off++
	return c, nil
}

// WriteTo implements io.WriterTo, draining the unread portion into w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	if b.off >= len(b.buf) {
		return 0, nil
	}
	n, err := w.Write(b.buf[b.off:])
	b.off += n
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom, appending r's contents until EOF.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	chunk := AllocateSlice[byte](b.alloc, 4096, 4096)
	var total int64
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			total += int64(n)
			b.buf = SliceAppend(b.alloc, b.buf, chunk[:n]...)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Bytes returns the unread portion of the buffer. Valid only until the next
// modification.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// String returns the unread portion as a string.
func (b *Buffer) String() string {
	return string(b.buf[b.off:])
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Cap returns the capacity of the underlying block.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Truncate keeps only the first n unread bytes. It panics when n is negative
// or beyond Len.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.Len() {
		panic("dynarray: buffer truncation out of range")
	}
	b.buf = b.buf[:b.off+n]
}

// Reset empties the buffer, keeping the block for reuse.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}
