// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCompactDropsTombstones(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	archive := filepath.Join(t.TempDir(), "test.ha")
	writeTestFile(t, filepath.Join(src, "a.txt"), repetitiveData(3000), time.Time{})
	writeTestFile(t, filepath.Join(src, "b.txt"), repetitiveData(5000), time.Time{})
	writeTestFile(t, filepath.Join(src, "c.txt"), []byte("charlie"), time.Time{})
	mustRun(t, "a14", archive, src)
	mustRun(t, "d", archive, src, "b.txt")

	before := mustEntries(t, archive)

	res, err := Compact(t.Context(), archive)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}

	if res.Kept != 2 || res.Removed != 1 {
		t.Fatalf("result=%+v, want 2 kept and 1 removed", res)
	}
	if res.SizeAfter >= res.SizeBefore {
		t.Fatalf("size %d -> %d, want smaller", res.SizeBefore, res.SizeAfter)
	}

	info, err := os.Stat(archive)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != res.SizeAfter {
		t.Fatalf("file size=%d, want %d", info.Size(), res.SizeAfter)
	}

	if _, err := os.Stat(archive + ".bak"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("backup left behind, err=%v", err)
	}

	after := mustEntries(t, archive)
	if len(after) != len(before) {
		t.Fatalf("entries=%d, want %d", len(after), len(before))
	}
	for i := range after {
		a, b := after[i], before[i]
		if a.FullPath() != b.FullPath() || a.Kind != b.Kind || a.CRC != b.CRC || a.CompressedSize != b.CompressedSize {
			t.Fatalf("entry %d=%+v, want %+v", i, a, b)
		}
	}

	mustRun(t, "t", archive, src)
}

func TestCompactAllDeletedKeepsArchive(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	archive := filepath.Join(t.TempDir(), "test.ha")
	writeTestFile(t, filepath.Join(src, "a.txt"), []byte("alpha"), time.Time{})
	mustRun(t, "a", archive, src)
	mustRun(t, "d", archive, src)

	res, err := Compact(t.Context(), archive)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}

	if res.Kept != 0 || res.SizeAfter != int64(archiveHeaderSize) {
		t.Fatalf("result=%+v, want empty archive", res)
	}

	if entries := mustEntries(t, archive); len(entries) != 0 {
		t.Fatalf("entries=%d, want 0", len(entries))
	}
}

func TestCompactRestoresBackupOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "bogus.ha")
	data := []byte("not an archive")
	if err := os.WriteFile(archive, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Compact(t.Context(), archive); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("Compact err=%v, want %v", err, ErrInvalidArchive)
	}

	got, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("archive=%q, want original restored", got)
	}

	if _, err := Compact(t.Context(), filepath.Join(dir, "missing.ha")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Compact(missing) err=%v, want not exist", err)
	}
}

func TestArchiveOpenEntryStreams(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	archive := filepath.Join(t.TempDir(), "test.ha")
	data := repetitiveData(70000)
	writeTestFile(t, filepath.Join(src, "big.bin"), data, time.Time{})
	writeTestFile(t, filepath.Join(src, "small.txt"), []byte("tiny"), time.Time{})
	mustRun(t, "a30", archive, src)

	arc, err := OpenArchive(archive, OpenReadOnly, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer func() { _ = arc.Close() }()

	big, ok := arc.Lookup("", "big.bin")
	if !ok || big.Kind != MethodLZ4 {
		t.Fatalf("big.bin=%+v found=%v, want LZ4 entry", big, ok)
	}

	got, err := arc.ReadEntry("", "big.bin")
	if err != nil {
		t.Fatalf("ReadEntry(big.bin): %v", err)
	}
	if string(got) != string(data) {
		t.Fatal("streamed content differs")
	}

	small, err := arc.ReadEntry("", "small.txt")
	if err != nil {
		t.Fatalf("ReadEntry(small.txt): %v", err)
	}
	if string(small) != "tiny" {
		t.Fatalf("small.txt=%q, want tiny", small)
	}

	if _, err := arc.ReadEntry("", "absent"); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("ReadEntry(absent) err=%v, want %v", err, ErrNoEntries)
	}
}

func TestCompactUsesCleanupStack(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	archive := filepath.Join(t.TempDir(), "test.ha")
	writeTestFile(t, filepath.Join(src, "a.txt"), []byte("alpha"), time.Time{})
	mustRun(t, "a", archive, src)

	var failures []error
	stack := NewCleanupStack(func(err error) { failures = append(failures, err) })
	if _, err := compactArchive(t.Context(), archive, stack); err != nil {
		t.Fatalf("compactArchive: %v", err)
	}
	if stack.Len() != 0 || len(failures) != 0 {
		t.Fatalf("stack depth=%d failures=%v, want empty after success", stack.Len(), failures)
	}

	bogus := filepath.Join(t.TempDir(), "bogus.ha")
	if err := os.WriteFile(bogus, []byte("not an archive"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := compactArchive(t.Context(), bogus, stack); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("compactArchive(bogus) err=%v, want %v", err, ErrInvalidArchive)
	}
	if stack.Len() != 0 {
		t.Fatalf("stack depth=%d, want restore action unwound", stack.Len())
	}
	if _, err := os.Stat(bogus); err != nil {
		t.Fatalf("original not restored: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := compactArchive(ctx, archive, stack); !errors.Is(err, context.Canceled) {
		t.Fatalf("compactArchive(canceled) err=%v, want %v", err, context.Canceled)
	}
	if entries := mustEntries(t, archive); len(entries) != 1 {
		t.Fatalf("entries=%d, want original restored after cancel", len(entries))
	}
	if _, err := os.Stat(archive + ".bak"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("backup left behind after rollback, err=%v", err)
	}
}
