// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"io"
)

// nopCloser wraps a reader and provides a no-op close.
type nopCloser struct {
	io.Reader
}

// Close closes nopCloser (no-op).
func (nopCloser) Close() error {
	return nil
}

// OpenEntry opens a stream of the decoded content of a regular file entry.
// Copy entries are read in place; other methods decode in a goroutine
// through a pipe with a codec of their own.
func (a *Archive) OpenEntry(entry *Entry) (io.ReadCloser, error) {
	if a.closed {
		return nil, ErrArchiveClosed
	}

	if !entry.Kind.IsCodec() {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnknownMethod, entry.FullPath(), MethodName(entry.Kind))
	}

	sr, err := a.OpenData(entry)
	if err != nil {
		return nil, err
	}

	if entry.Kind == MethodCopy {
		return nopCloser{Reader: sr}, nil
	}

	method, err := NewMethodTable().Lookup(entry.Kind)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go streamDecodeEntry(entry.FullPath(), method, pw, sr, int64(entry.OriginalSize))

	return pr, nil
}

// ReadEntry reads the full decoded content of the live entry dir/name.
func (a *Archive) ReadEntry(dir string, name string) ([]byte, error) {
	entry, ok := a.Lookup(dir, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEntries, joinArchivePath(dir, name))
	}

	rc, err := a.OpenEntry(entry)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// streamDecodeEntry decodes one entry stream into pipe writer.
func streamDecodeEntry(name string, method Method, dst *io.PipeWriter, src io.Reader, originalSize int64) {
	defer method.Codec.Cleanup()

	if _, err := method.Codec.Decode(dst, src, originalSize); err != nil {
		_ = dst.CloseWithError(fmt.Errorf("decode entry %s: %w", name, err))
		return
	}

	_ = dst.Close()
}
