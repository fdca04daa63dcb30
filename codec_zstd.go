// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec is Zstandard compression. Encoder and decoder are created
// lazily and reused until Cleanup.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Encode compresses src into dst.
func (c *zstdCodec) Encode(dst io.Writer, src io.Reader) (int64, error) {
	cw := &countingWriter{w: dst}
	if c.enc == nil {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return 0, fmt.Errorf("zstd encoder: %w", err)
		}

		c.enc = enc
	}
	c.enc.Reset(cw)

	if _, err := io.Copy(c.enc, src); err != nil {
		return cw.n, fmt.Errorf("zstd compress: %w", err)
	}

	if err := c.enc.Close(); err != nil {
		return cw.n, fmt.Errorf("zstd flush: %w", err)
	}

	return cw.n, nil
}

// Decode expands src into dst.
func (c *zstdCodec) Decode(dst io.Writer, src io.Reader, originalSize int64) (int64, error) {
	if c.dec == nil {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return 0, fmt.Errorf("zstd decoder: %w", err)
		}

		c.dec = dec
	}

	if err := c.dec.Reset(src); err != nil {
		return 0, fmt.Errorf("zstd decoder: %w", err)
	}

	written, err := io.CopyN(dst, c.dec, originalSize)
	if err != nil {
		return written, fmt.Errorf("zstd decompress: %w", err)
	}

	return written, checkDecodedSize(written, originalSize)
}

// Cleanup releases encoder and decoder resources.
func (c *zstdCodec) Cleanup() {
	if c.enc != nil {
		_ = c.enc.Close()
		c.enc = nil
	}

	if c.dec != nil {
		c.dec.Close()
		c.dec = nil
	}
}
