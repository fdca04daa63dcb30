// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// test decodes selected entries and verifies their checksums without
// touching the filesystem.
func (e *Engine) test(ctx context.Context, patterns []string) error {
	sel, err := NewSelector(patterns)
	if err != nil {
		return withCode(err, CodeUsage)
	}

	entry, err := e.firstEntry(sel)
	if err != nil {
		return err
	}

	for ; entry != nil; entry = e.arc.Next(sel) {
		if err := ctx.Err(); err != nil {
			return err
		}

		display := entry.FullPath()
		switch entry.Kind {
		case MethodDir, MethodSpecial:
			e.printf("Testing %s DONE  %s\n", MethodName(entry.Kind), display)
			continue
		}

		crc, err := e.decodeEntry(entry, io.Discard, "Testing", nil)
		if err != nil {
			e.report(display, err)
			continue
		}

		if crc != entry.CRC {
			e.report(display, fmt.Errorf("%w: stored %08x, got %08x", ErrCRCMismatch, entry.CRC, crc))
			continue
		}

		e.printf("Testing %s  %s  OK\n", MethodName(entry.Kind), display)
	}

	return nil
}

// decodeEntry expands the payload of entry into dst and returns the CRC of
// the decoded content. guard is pushed above the codec cleanup and relaxed
// once decoding succeeds; on failure it runs.
func (e *Engine) decodeEntry(entry *Entry, dst io.Writer, verb string, guard UndoAction) (uint32, error) {
	hash := crc32.NewIEEE()
	if entry.OriginalSize == 0 {
		return hash.Sum32(), nil
	}

	method, err := e.methods.Lookup(entry.Kind)
	if err != nil {
		if guard != nil {
			_ = guard.undo()
		}

		return 0, err
	}

	data, err := e.arc.OpenData(entry)
	if err != nil {
		if guard != nil {
			_ = guard.undo()
		}

		return 0, err
	}

	mark := e.stack.Push(Finalizer{Fn: method.Codec.Cleanup})
	if guard != nil {
		e.stack.Push(guard)
	}

	bar := newProgress(e.showProgress(), e.out, int64(entry.OriginalSize), verb+" "+method.Name)
	out := &hashingWriter{w: dst, hash: hash, progress: bar}
	_, err = method.Codec.Decode(out, data, int64(entry.OriginalSize))
	bar.finish()

	if err != nil {
		_ = e.stack.Unwind(mark)
		return 0, err
	}

	e.stack.Relax(mark)
	_ = e.stack.Unwind(mark)
	return hash.Sum32(), nil
}

// hashingWriter checksums decoded content on its way to the destination.
type hashingWriter struct {
	w        io.Writer
	hash     hash.Hash32
	progress io.Writer
}

// Write writes p to the destination and feeds the checksum and progress.
func (h *hashingWriter) Write(p []byte) (int, error) {
	n, err := h.w.Write(p)
	if n > 0 {
		_, _ = h.hash.Write(p[:n])
		_, _ = h.progress.Write(p[:n])
	}

	return n, err
}
