// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestCleanupStackUnwindOrder(t *testing.T) {
	t.Parallel()

	var order []int
	s := NewCleanupStack(nil)
	for i := 1; i <= 3; i++ {
		s.Push(Finalizer{Fn: func() { order = append(order, i) }})
	}

	if err := s.Unwind(RootMark); err != nil {
		t.Fatalf("Unwind: %v", err)
	}

	if want := []int{3, 2, 1}; !slices.Equal(order, want) {
		t.Fatalf("order=%v, want %v", order, want)
	}
	if s.Len() != 0 {
		t.Fatalf("Len=%d, want 0", s.Len())
	}
}

func TestCleanupStackUnwindEmptyMark(t *testing.T) {
	t.Parallel()

	calls := 0
	s := NewCleanupStack(nil)
	s.Push(Finalizer{Fn: func() { calls++ }})

	mark := s.Mark()
	if err := s.Unwind(mark); err != nil {
		t.Fatalf("Unwind: %v", err)
	}
	if calls != 0 || s.Len() != 1 {
		t.Fatalf("calls=%d len=%d, want 0 and 1", calls, s.Len())
	}
}

func TestCleanupStackRelax(t *testing.T) {
	t.Parallel()

	var ran []string
	record := func(name string, relax bool) UndoAction {
		return Finalizer{Relaxable: relax, Fn: func() { ran = append(ran, name) }}
	}

	s := NewCleanupStack(nil)
	s.Push(record("below", true))
	mark := s.Mark()
	s.Push(record("keep1", false))
	s.Push(record("drop1", true))
	s.Push(record("keep2", false))
	s.Push(record("drop2", true))

	s.Relax(mark)
	if s.Len() != 3 {
		t.Fatalf("Len after Relax=%d, want 3", s.Len())
	}

	if err := s.Unwind(mark); err != nil {
		t.Fatalf("Unwind: %v", err)
	}
	if want := []string{"keep2", "keep1"}; !slices.Equal(ran, want) {
		t.Fatalf("ran=%v, want %v", ran, want)
	}

	if err := s.Unwind(RootMark); err != nil {
		t.Fatalf("Unwind root: %v", err)
	}
	if want := []string{"keep2", "keep1", "below"}; !slices.Equal(ran, want) {
		t.Fatalf("ran=%v, want %v", ran, want)
	}
}

func TestCleanupStackRemoveActions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "partial.out")
	sub := filepath.Join(dir, "made")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	f, err := os.Open(file)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s := NewCleanupStack(nil)
	s.Push(RemoveDir{Path: sub})
	s.Push(CloseRemove{File: f, Path: file, Relaxable: true})
	if err := s.Unwind(RootMark); err != nil {
		t.Fatalf("Unwind: %v", err)
	}

	for _, path := range []string{file, sub} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("Stat(%s) err=%v, want not exist", path, err)
		}
	}
}

func TestCleanupStackReportsFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	full := filepath.Join(dir, "full")
	if err := os.MkdirAll(filepath.Join(full, "child"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	var reported []error
	s := NewCleanupStack(func(err error) { reported = append(reported, err) })
	s.Push(RemoveDir{Path: full})
	s.Push(RemoveFile{Path: filepath.Join(dir, "missing")})

	err := s.Unwind(RootMark)
	if err == nil {
		t.Fatal("Unwind: expected error for non-empty directory")
	}
	if len(reported) != 1 {
		t.Fatalf("reported=%d, want 1", len(reported))
	}
}
