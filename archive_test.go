// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"bytes"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// storeTestEntry writes data as a copy entry.
func storeTestEntry(t *testing.T, arc *Archive, dir string, name string, data []byte) {
	t.Helper()

	if err := arc.NewEntry(dir, name, EntryMeta{ModTime: time.Unix(1700000000, 0)}); err != nil {
		t.Fatalf("NewEntry(%s/%s): %v", dir, name, err)
	}

	if len(data) > 0 {
		w, err := arc.BeginTrial()
		if err != nil {
			t.Fatalf("BeginTrial: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if _, err := arc.EndTrial(); err != nil {
			t.Fatalf("EndTrial: %v", err)
		}
	}

	if err := arc.AcceptTrial(MethodCopy, int64(len(data))); err != nil {
		t.Fatalf("AcceptTrial: %v", err)
	}
	if err := arc.FinalizeFile(uint32(len(data)), crc32.ChecksumIEEE(data)); err != nil {
		t.Fatalf("FinalizeFile: %v", err)
	}
}

func TestArchiveWriteAndReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ha")
	arc, err := OpenArchive(path, OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive(create): %v", err)
	}

	storeTestEntry(t, arc, "docs", "a.txt", []byte("alpha"))
	storeTestEntry(t, arc, "", "empty.bin", nil)
	if err := arc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := OpenArchive(path, OpenReadOnly, nil)
	if err != nil {
		t.Fatalf("OpenArchive(read_only): %v", err)
	}
	defer func() { _ = ro.Close() }()

	if ro.Len() != 2 {
		t.Fatalf("Len=%d, want 2", ro.Len())
	}

	entry, ok := ro.Lookup("docs", "a.txt")
	if !ok {
		t.Fatal("Lookup(docs, a.txt) not found")
	}
	if entry.OriginalSize != 5 || entry.Kind != MethodCopy || entry.TimeStamp != 1700000000 {
		t.Fatalf("entry=%+v, want 5 bytes CPY at 1700000000", entry)
	}

	data, err := ro.ReadEntry("docs", "a.txt")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "alpha" {
		t.Fatalf("ReadEntry=%q, want alpha", data)
	}

	ro.Reset()
	var names []string
	for e := ro.Next(nil); e != nil; e = ro.Next(nil) {
		names = append(names, e.FullPath())
	}
	if len(names) != 2 || names[0] != "docs/a.txt" || names[1] != "empty.bin" {
		t.Fatalf("Next order=%v, want [docs/a.txt empty.bin]", names)
	}
}

func TestArchiveSupersedeAndDelete(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ha")
	arc, err := OpenArchive(path, OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}

	storeTestEntry(t, arc, "", "a.txt", []byte("old"))
	storeTestEntry(t, arc, "", "a.txt", []byte("newer"))
	storeTestEntry(t, arc, "", "b.txt", []byte("bee"))
	if arc.Len() != 2 {
		t.Fatalf("Len=%d, want 2 after supersede", arc.Len())
	}

	b, ok := arc.Lookup("", "b.txt")
	if !ok {
		t.Fatal("Lookup(b.txt) not found")
	}
	if err := arc.Delete(b); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := arc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" || entries[0].OriginalSize != 5 {
		t.Fatalf("entries=%+v, want only the newer a.txt", entries)
	}
}

func TestArchiveDamagedTail(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ha")
	arc, err := OpenArchive(path, OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	storeTestEntry(t, arc, "", "a.txt", []byte("alpha"))
	if err := arc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	good := info.Size()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.Write(make([]byte, 40)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = f.Close()

	ro, err := OpenArchive(path, OpenReadOnly, nil)
	if err != nil {
		t.Fatalf("OpenArchive(read_only): %v", err)
	}
	if ro.Dropped() != 40 || ro.Len() != 1 {
		t.Fatalf("Dropped=%d Len=%d, want 40 and 1", ro.Dropped(), ro.Len())
	}
	_ = ro.Close()

	rw, err := OpenArchive(path, OpenExisting, nil)
	if err != nil {
		t.Fatalf("OpenArchive(existing): %v", err)
	}
	_ = rw.Close()

	info, err = os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != good {
		t.Fatalf("size=%d, want %d after writable open", info.Size(), good)
	}
}

func TestArchiveRollbackGuard(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ha")
	stack := NewCleanupStack(nil)
	arc, err := OpenArchive(path, OpenCreate, stack)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer func() { _ = arc.Close() }()

	storeTestEntry(t, arc, "", "keep.txt", []byte("keep"))
	stack.Relax(RootMark)
	committed := arc.size

	if err := arc.NewEntry("", "lost.txt", EntryMeta{}); err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	w, err := arc.BeginTrial()
	if err != nil {
		t.Fatalf("BeginTrial: %v", err)
	}
	if _, err := w.Write(bytes.Repeat([]byte("x"), 1000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := arc.EndTrial(); err != nil {
		t.Fatalf("EndTrial: %v", err)
	}

	if err := stack.Unwind(RootMark); err != nil {
		t.Fatalf("Unwind: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != committed {
		t.Fatalf("size=%d, want %d after rollback", info.Size(), committed)
	}
	if _, ok := arc.Lookup("", "lost.txt"); ok {
		t.Fatal("rolled back entry must not be visible")
	}
}

func TestArchiveFinalizeRequiresLastTrial(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ha")
	arc, err := OpenArchive(path, OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer func() { _ = arc.Close() }()

	if err := arc.NewEntry("", "a.txt", EntryMeta{}); err != nil {
		t.Fatalf("NewEntry: %v", err)
	}

	for i, payload := range []string{"short", "longer payload"} {
		w, err := arc.BeginTrial()
		if err != nil {
			t.Fatalf("BeginTrial: %v", err)
		}
		_, _ = w.Write([]byte(payload))
		n, err := arc.EndTrial()
		if err != nil {
			t.Fatalf("EndTrial: %v", err)
		}
		if i == 0 {
			if err := arc.AcceptTrial(MethodCopy, n); err != nil {
				t.Fatalf("AcceptTrial: %v", err)
			}
		}
	}

	if err := arc.FinalizeFile(5, 0); !errors.Is(err, ErrNoPendingEntry) {
		t.Fatalf("FinalizeFile err=%v, want %v", err, ErrNoPendingEntry)
	}

	if err := arc.AcceptTrial(MethodLZSS, 3); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("AcceptTrial wrong size err=%v, want %v", err, ErrSizeMismatch)
	}
}

func TestArchiveOpenErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.ha")
	if err := os.WriteFile(bogus, []byte("NOTANARCHIVE"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := OpenArchive(bogus, OpenReadOnly, nil); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("OpenArchive(bogus) err=%v, want %v", err, ErrInvalidArchive)
	}

	missing := filepath.Join(dir, "missing.ha")
	if _, err := OpenArchive(missing, OpenExisting, nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("OpenArchive(missing) err=%v, want not exist", err)
	}

	created, err := OpenArchive(missing, OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive(create): %v", err)
	}
	if err := created.NewEntry("", "x", EntryMeta{}); err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if err := created.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(missing); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("empty created archive must be removed, stat err=%v", err)
	}
}

func TestArchiveReadOnlyMutations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ha")
	arc, err := OpenArchive(path, OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	storeTestEntry(t, arc, "", "a.txt", []byte("a"))
	_ = arc.Close()

	ro, err := OpenArchive(path, OpenReadOnly, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer func() { _ = ro.Close() }()

	if err := ro.NewEntry("", "b.txt", EntryMeta{}); !errors.Is(err, ErrArchiveReadOnly) {
		t.Fatalf("NewEntry err=%v, want %v", err, ErrArchiveReadOnly)
	}

	e, _ := ro.Lookup("", "a.txt")
	if err := ro.Delete(e); !errors.Is(err, ErrArchiveReadOnly) {
		t.Fatalf("Delete err=%v, want %v", err, ErrArchiveReadOnly)
	}
}

func TestArchiveNewEntryValidation(t *testing.T) {
	t.Parallel()

	arc, err := OpenArchive(filepath.Join(t.TempDir(), "test.ha"), OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer func() { _ = arc.Close() }()

	for _, name := range []string{"", "a/b", "nul\x00"} {
		if err := arc.NewEntry("", name, EntryMeta{}); !errors.Is(err, ErrInvalidEntryName) {
			t.Fatalf("NewEntry(%q) err=%v, want %v", name, err, ErrInvalidEntryName)
		}
	}
}

func TestArchiveCreateWritesHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ha")
	arc, err := OpenArchive(path, OpenCreate, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer func() { _ = arc.Close() }()

	if arc.size != int64(archiveHeaderSize) {
		t.Fatalf("size=%d, want %d", arc.size, archiveHeaderSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != archiveMagic+"\x01" {
		t.Fatalf("header=%q, want magic and version", data)
	}
}
