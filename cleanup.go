// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Mark is a cleanup stack depth captured by CleanupStack.Mark.
type Mark int

// RootMark denotes the empty stack; unwinding to it runs every pending action.
const RootMark Mark = 0

// UndoAction is one pending cleanup step. The set of variants is closed:
// RemoveFile, RemoveDir, Finalizer, CloseRemove and RestoreBackup.
type UndoAction interface {
	// undo performs the action.
	undo() error
	// relaxable reports whether Relax may discard the action without running it.
	relaxable() bool
}

// RemoveFile removes a file when unwound.
type RemoveFile struct {
	Path      string
	Relaxable bool
}

// RemoveDir removes an (empty) directory when unwound.
type RemoveDir struct {
	Path      string
	Relaxable bool
}

// Finalizer calls Fn when unwound.
type Finalizer struct {
	Fn        func()
	Relaxable bool
}

// CloseRemove closes File and removes Path when unwound.
// Relaxing it leaves both the descriptor and the file alone.
type CloseRemove struct {
	File      io.Closer
	Path      string
	Relaxable bool
}

// RestoreBackup moves Backup back over Path when unwound.
type RestoreBackup struct {
	Path      string
	Backup    string
	Relaxable bool
}

func (a RemoveFile) undo() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", a.Path, err)
	}

	return nil
}

func (a RemoveFile) relaxable() bool { return a.Relaxable }

func (a RemoveDir) undo() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove directory %s: %w", a.Path, err)
	}

	return nil
}

func (a RemoveDir) relaxable() bool { return a.Relaxable }

func (a Finalizer) undo() error {
	if a.Fn != nil {
		a.Fn()
	}

	return nil
}

func (a Finalizer) relaxable() bool { return a.Relaxable }

func (a CloseRemove) undo() error {
	var closeErr error
	if a.File != nil {
		closeErr = a.File.Close()
	}

	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", a.Path, err)
	}

	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("close %s: %w", a.Path, closeErr)
	}

	return nil
}

func (a CloseRemove) relaxable() bool { return a.Relaxable }

func (a RestoreBackup) undo() error {
	return rollbackFromBackup(a.Path, a.Backup)
}

func (a RestoreBackup) relaxable() bool { return a.Relaxable }

// CleanupStack is a LIFO of pending undo actions. It is owned by one engine
// run and is not safe for concurrent use.
type CleanupStack struct {
	// onError receives failures of individual undo actions; nil drops them.
	onError func(err error)
	actions []UndoAction
}

// NewCleanupStack creates an empty stack. onError is called for every undo
// action that fails during Unwind.
func NewCleanupStack(onError func(err error)) *CleanupStack {
	return &CleanupStack{
		onError: onError,
		actions: make([]UndoAction, 0, 16),
	}
}

// Mark returns the current stack depth.
func (s *CleanupStack) Mark() Mark {
	return Mark(len(s.actions))
}

// Len returns the number of pending actions.
func (s *CleanupStack) Len() int {
	return len(s.actions)
}

// Push appends an action and returns the mark just below it.
func (s *CleanupStack) Push(action UndoAction) Mark {
	mark := s.Mark()
	if action != nil {
		s.actions = append(s.actions, action)
	}

	return mark
}

// Relax discards every relaxable action above mark without running it.
// Non-relaxable actions keep their relative order.
func (s *CleanupStack) Relax(mark Mark) {
	start := s.clamp(mark)
	kept := start
	for i := start; i < len(s.actions); i++ {
		if s.actions[i].relaxable() {
			continue
		}

		s.actions[kept] = s.actions[i]
		kept++
	}

	clear(s.actions[kept:])
	s.actions = s.actions[:kept]
}

// Unwind runs every action above mark in reverse push order and removes them.
// Failures are passed to the stack error callback; the first one is returned.
func (s *CleanupStack) Unwind(mark Mark) error {
	start := s.clamp(mark)

	var first error
	for len(s.actions) > start {
		last := len(s.actions) - 1
		action := s.actions[last]
		s.actions[last] = nil
		s.actions = s.actions[:last]

		if err := action.undo(); err != nil {
			if s.onError != nil {
				s.onError(err)
			}
			if first == nil {
				first = err
			}
		}
	}

	return first
}

// Reconcile relaxes and then unwinds everything above mark: guards that
// were committed vanish, deferred non-relaxable actions run now.
func (s *CleanupStack) Reconcile(mark Mark) error {
	s.Relax(mark)
	return s.Unwind(mark)
}

// clamp bounds mark to the current stack.
func (s *CleanupStack) clamp(mark Mark) int {
	if mark < 0 {
		return 0
	}

	if int(mark) > len(s.actions) {
		return len(s.actions)
	}

	return int(mark)
}
