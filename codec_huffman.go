// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// huffmanCodec is static Huffman coding: deflate blocks without match search.
type huffmanCodec struct {
	w *flate.Writer
	r io.ReadCloser
}

// Encode compresses src into dst.
func (c *huffmanCodec) Encode(dst io.Writer, src io.Reader) (int64, error) {
	cw := &countingWriter{w: dst}
	if c.w == nil {
		w, err := flate.NewWriter(cw, flate.HuffmanOnly)
		if err != nil {
			return 0, fmt.Errorf("huffman writer: %w", err)
		}

		c.w = w
	} else {
		c.w.Reset(cw)
	}

	if _, err := io.Copy(c.w, src); err != nil {
		return cw.n, fmt.Errorf("huffman compress: %w", err)
	}

	if err := c.w.Close(); err != nil {
		return cw.n, fmt.Errorf("huffman flush: %w", err)
	}

	return cw.n, nil
}

// Decode expands src into dst.
func (c *huffmanCodec) Decode(dst io.Writer, src io.Reader, originalSize int64) (int64, error) {
	if c.r == nil {
		c.r = flate.NewReader(src)
	} else if err := c.r.(flate.Resetter).Reset(src, nil); err != nil {
		return 0, fmt.Errorf("huffman reader: %w", err)
	}

	written, err := io.CopyN(dst, c.r, originalSize)
	if err != nil {
		return written, fmt.Errorf("huffman decompress: %w", err)
	}

	return written, checkDecodedSize(written, originalSize)
}

// Cleanup drops the reusable writer and reader.
func (c *huffmanCodec) Cleanup() {
	c.w = nil
	if c.r != nil {
		_ = c.r.Close()
		c.r = nil
	}
}
