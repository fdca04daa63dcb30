// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"io"
	"math"

	"github.com/woozymasta/lzss"
)

// lzssCodec is LZSS compression. It keeps no state between calls.
type lzssCodec struct{}

// Encode compresses src into dst.
func (lzssCodec) Encode(dst io.Writer, src io.Reader) (int64, error) {
	_, outSize, err := lzss.CompressToWriter(dst, src, nil)
	if err != nil {
		return outSize, fmt.Errorf("lzss compress: %w", err)
	}

	return outSize, nil
}

// Decode expands src into dst; LZSS streams need the decoded length up front.
func (lzssCodec) Decode(dst io.Writer, src io.Reader, originalSize int64) (int64, error) {
	if originalSize > math.MaxInt32 {
		return 0, ErrSizeOverflow
	}

	cw := &countingWriter{w: dst}
	if _, err := lzss.DecompressToWriter(cw, src, int(originalSize), nil); err != nil {
		return cw.n, fmt.Errorf("lzss decompress: %w", err)
	}

	return cw.n, checkDecodedSize(cw.n, originalSize)
}

// Cleanup is a no-op.
func (lzssCodec) Cleanup() {}
