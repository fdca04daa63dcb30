// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// CompactResult summarizes one compaction.
type CompactResult struct {
	// Kept is the number of live entries copied.
	Kept int `json:"kept" yaml:"kept"`
	// Removed is the number of tombstones dropped.
	Removed int `json:"removed" yaml:"removed"`
	// SizeBefore and SizeAfter are archive file sizes in bytes.
	SizeBefore int64 `json:"size_before" yaml:"size_before"`
	SizeAfter  int64 `json:"size_after" yaml:"size_after"`
}

// Compact rewrites the archive at path without tombstoned entries. The
// original is moved to a backup first and restored if the rewrite fails.
func Compact(ctx context.Context, path string) (*CompactResult, error) {
	return compactArchive(ctx, path, NewCleanupStack(nil))
}

// compactArchive runs a compaction whose rollback lives on stack. A
// relaxable restore of the backup sits below the archive close actions, so
// a failed rewrite closes both archives before the original is put back.
func compactArchive(ctx context.Context, path string, stack *CleanupStack) (*CompactResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	backupPath := path + ".bak"
	if err := removeIfExists(backupPath); err != nil {
		return nil, err
	}

	if err := os.Rename(path, backupPath); err != nil {
		return nil, fmt.Errorf("move archive to backup: %w", err)
	}

	mark := stack.Push(RestoreBackup{Path: path, Backup: backupPath, Relaxable: true})
	res, err := compactFromBackup(ctx, path, backupPath, stack)
	if err != nil {
		if rollbackErr := stack.Unwind(mark); rollbackErr != nil {
			return nil, fmt.Errorf("%w (rollback failed: %w)", err, rollbackErr)
		}

		return nil, err
	}

	if err := stack.Reconcile(mark); err != nil {
		return nil, err
	}

	if err := removeIfExists(backupPath); err != nil {
		return nil, fmt.Errorf("remove backup: %w", err)
	}

	res.SizeBefore = info.Size()
	return res, nil
}

// compactFromBackup copies live entries of backupPath into a new archive at
// path. Both archives are closed through stack.
func compactFromBackup(ctx context.Context, path string, backupPath string, stack *CleanupStack) (*CompactResult, error) {
	src, err := OpenArchive(backupPath, OpenReadOnly, nil)
	if err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	stack.Push(Finalizer{Fn: func() { _ = src.Close() }})

	dst, err := OpenArchive(path, OpenCreate, nil)
	if err != nil {
		return nil, fmt.Errorf("create destination archive: %w", err)
	}
	// keep the result even when every entry was a tombstone
	dst.created = false
	stack.Push(Finalizer{Fn: func() { _ = dst.Close() }})

	res := &CompactResult{}
	for i := range src.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := src.entries[i]
		if entry.IsDeleted() {
			res.Removed++
			continue
		}

		data, err := src.OpenData(&entry)
		if err != nil {
			return nil, err
		}

		if err := dst.appendRaw(entry, data); err != nil {
			return nil, err
		}

		res.Kept++
	}

	res.SizeAfter = dst.size
	if err := dst.Close(); err != nil {
		return nil, err
	}

	return res, nil
}

// appendRaw appends entry with its stored payload unchanged.
func (a *Archive) appendRaw(entry Entry, data io.Reader) error {
	if err := a.checkWritable(); err != nil {
		return err
	}

	entry.offset = a.size
	header := encodeEntryHeader(&entry)
	entry.dataOffset = entry.offset + int64(len(header))

	if _, err := a.file.WriteAt(header, entry.offset); err != nil {
		return fmt.Errorf("write entry header: %w", err)
	}

	w := io.NewOffsetWriter(a.file, entry.dataOffset)
	n, err := io.Copy(w, data)
	if err != nil {
		return fmt.Errorf("copy entry data: %w", err)
	}

	if n != int64(entry.CompressedSize) {
		return fmt.Errorf("%w: %s payload %d bytes, want %d", ErrSizeMismatch, entry.FullPath(), n, entry.CompressedSize)
	}

	a.entries = append(a.entries, entry)
	a.size = entry.dataOffset + n
	return nil
}

// compact runs Compact for the c command.
func (e *Engine) compact(ctx context.Context, path string) error {
	res, err := compactArchive(ctx, path, e.stack)
	if err != nil {
		return err
	}

	e.printf("Compacted %s: %d kept, %d removed, %d -> %d bytes\n",
		path, res.Kept, res.Removed, res.SizeBefore, res.SizeAfter)
	return nil
}

// removeIfExists removes file when present.
func removeIfExists(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) || err == nil {
		return nil
	}

	return fmt.Errorf("remove %s: %w", path, err)
}

// rollbackFromBackup restores backup on failed compaction.
func rollbackFromBackup(path string, backupPath string) error {
	_ = os.Remove(path)

	if err := os.Rename(backupPath, path); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	return nil
}
