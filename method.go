// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"io"
	"strconv"
)

// Codec is the capability set every compression method provides.
type Codec interface {
	// Encode compresses src into dst and returns the number of bytes written to dst.
	Encode(dst io.Writer, src io.Reader) (int64, error)
	// Decode expands src into dst and returns the number of bytes written to dst.
	// originalSize is the expected decoded length.
	Decode(dst io.Writer, src io.Reader, originalSize int64) (int64, error)
	// Cleanup releases codec working state. Safe to call at any time.
	Cleanup()
}

// Method binds an id and display name to a codec. Structural kinds
// (MethodDir, MethodSpecial) carry no codec.
type Method struct {
	Codec Codec
	Name  string
	ID    MethodID
}

// MethodTable is the fixed method registry of one engine. Codecs keep
// reusable state between trials, so tables are not shared between engines.
type MethodTable struct {
	methods [maxCodecMethod + 1]Method
}

// NewMethodTable builds the registry with every known codec.
func NewMethodTable() *MethodTable {
	return &MethodTable{
		methods: [maxCodecMethod + 1]Method{
			MethodCopy:    {ID: MethodCopy, Name: "CPY", Codec: &copyCodec{}},
			MethodLZSS:    {ID: MethodLZSS, Name: "LZS", Codec: &lzssCodec{}},
			MethodHuffman: {ID: MethodHuffman, Name: "HSC", Codec: &huffmanCodec{}},
			MethodLZ4:     {ID: MethodLZ4, Name: "LZ4", Codec: &lz4Codec{}},
			MethodZstd:    {ID: MethodZstd, Name: "ZST", Codec: &zstdCodec{}},
		},
	}
}

// Lookup returns the codec method for id.
func (t *MethodTable) Lookup(id MethodID) (Method, error) {
	if !id.IsCodec() {
		return Method{}, fmt.Errorf("%w: %d", ErrUnknownMethod, id)
	}

	return t.methods[id], nil
}

// Cleanup releases the working state of every codec.
func (t *MethodTable) Cleanup() {
	for i := range t.methods {
		if t.methods[i].Codec != nil {
			t.methods[i].Codec.Cleanup()
		}
	}
}

// MethodName returns the display name of an entry kind.
func MethodName(id MethodID) string {
	switch id {
	case MethodCopy:
		return "CPY"
	case MethodLZSS:
		return "LZS"
	case MethodHuffman:
		return "HSC"
	case MethodLZ4:
		return "LZ4"
	case MethodZstd:
		return "ZST"
	case MethodDir:
		return "DIR"
	case MethodSpecial:
		return "SPC"
	case MethodTombstone:
		return "DEL"
	default:
		return strconv.Itoa(int(id))
	}
}

// knownKind reports whether id is a valid entry header kind.
func knownKind(id MethodID) bool {
	return id.IsCodec() || id == MethodDir || id == MethodSpecial || id == MethodTombstone
}

// countingWriter counts bytes passed to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

// Write writes p and accumulates the written length.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// checkDecodedSize verifies a decoder produced exactly the expected length.
func checkDecodedSize(written int64, want int64) error {
	if written != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, written, want)
	}

	return nil
}
