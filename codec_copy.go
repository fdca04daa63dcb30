// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"io"
	"math"
)

// copyBufferSize is the streaming buffer used by the copy codec.
const copyBufferSize = 64 * 1024

// copyCodec stores content verbatim.
type copyCodec struct {
	buf []byte
}

// Encode copies src to dst.
func (c *copyCodec) Encode(dst io.Writer, src io.Reader) (int64, error) {
	return copyPayloadBounded(dst, src, math.MaxUint32, c.buffer())
}

// Decode copies exactly originalSize bytes from src to dst.
func (c *copyCodec) Decode(dst io.Writer, src io.Reader, originalSize int64) (int64, error) {
	written, err := copyPayloadBounded(dst, src, originalSize, c.buffer())
	if err != nil {
		return written, err
	}

	return written, checkDecodedSize(written, originalSize)
}

// Cleanup drops the copy buffer.
func (c *copyCodec) Cleanup() {
	c.buf = nil
}

// buffer returns the lazily allocated copy buffer.
func (c *copyCodec) buffer() []byte {
	if c.buf == nil {
		c.buf = make([]byte, copyBufferSize)
	}

	return c.buf
}

// copyPayloadBounded streams payload from src to dst and enforces strict size limit.
func copyPayloadBounded(dst io.Writer, src io.Reader, limit int64, buf []byte) (int64, error) {
	if dst == nil {
		return 0, ErrNilWriter
	}
	if src == nil {
		return 0, ErrNilReader
	}
	if limit < 0 {
		return 0, ErrSizeOverflow
	}
	if len(buf) == 0 {
		buf = make([]byte, 32*1024)
	}

	var written int64
	emptyReads := 0
	for written < limit {
		chunkSize := len(buf)
		remaining := limit - written
		if int64(chunkSize) > remaining {
			chunkSize = int(remaining)
		}

		n, readErr := src.Read(buf[:chunkSize])
		if n > 0 {
			emptyReads = 0
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)

			if writeErr != nil {
				return written, writeErr
			}
			if nw != n {
				return written, io.ErrShortWrite
			}
		}
		if n == 0 && readErr == nil {
			emptyReads++
			if emptyReads > 100 {
				return written, io.ErrNoProgress
			}

			continue
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}

			return written, readErr
		}
	}

	// If we consumed exactly the limit, probe one extra byte to ensure source is not longer.
	if written == limit {
		var probe [1]byte
		n, err := src.Read(probe[:])
		if n > 0 {
			return written, ErrSizeOverflow
		}
		if err != nil && err != io.EOF {
			return written, err
		}
	}

	return written, nil
}
