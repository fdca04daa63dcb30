// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec is LZ4 frame compression.
type lz4Codec struct {
	w *lz4.Writer
	r *lz4.Reader
}

// Encode compresses src into dst.
func (c *lz4Codec) Encode(dst io.Writer, src io.Reader) (int64, error) {
	cw := &countingWriter{w: dst}
	if c.w == nil {
		c.w = lz4.NewWriter(cw)
	} else {
		c.w.Reset(cw)
	}

	if _, err := io.Copy(c.w, src); err != nil {
		return cw.n, fmt.Errorf("lz4 compress: %w", err)
	}

	if err := c.w.Close(); err != nil {
		return cw.n, fmt.Errorf("lz4 flush: %w", err)
	}

	return cw.n, nil
}

// Decode expands src into dst.
func (c *lz4Codec) Decode(dst io.Writer, src io.Reader, originalSize int64) (int64, error) {
	if c.r == nil {
		c.r = lz4.NewReader(src)
	} else {
		c.r.Reset(src)
	}

	written, err := io.CopyN(dst, c.r, originalSize)
	if err != nil {
		return written, fmt.Errorf("lz4 decompress: %w", err)
	}

	return written, checkDecodedSize(written, originalSize)
}

// Cleanup drops the reusable writer and reader.
func (c *lz4Codec) Cleanup() {
	c.w = nil
	c.r = nil
}
