// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// add drives the traversal for add, freshen and update over every pattern.
func (e *Engine) add(ctx context.Context, patterns []string) error {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	found := false
	for _, pattern := range patterns {
		dir, name := splitPattern(pattern)
		matcher, err := newNameMatcher(name)
		if err != nil {
			return withCode(err, CodeUsage)
		}

		e.logger.Debug("adding", "pattern", pattern, "inclusion", e.include)
		ok, err := e.addInDir(ctx, newWalkDir(e.opts.Dir, dir), matcher)
		if err != nil {
			return err
		}

		found = found || ok
	}

	if !found {
		e.printf("Nothing to do\n")
	}

	return nil
}

// storeDir returns the archive directory stored for items of dir.
func (e *Engine) storeDir(dir walkDir) string {
	if e.inv.Switches.UsePath() {
		return dir.arc
	}

	return ""
}

// addDir stores a directory entry. With move semantics the directory is
// removed when the enclosing traversal level is reconciled, after its
// content was archived.
func (e *Engine) addDir(dir walkDir, name string, info os.FileInfo) (bool, error) {
	display := dir.display(name)
	mark := e.stack.Mark()
	meta := EntryMeta{ModTime: info.ModTime(), Attr: attrOf(info)}
	if err := e.arc.NewEntry(e.storeDir(dir), name, meta); err != nil {
		e.report(display, err)
		return false, nil
	}

	if err := e.arc.AddDirectory(); err != nil {
		_ = e.stack.Unwind(mark)
		return false, err
	}

	e.stack.Relax(mark)
	e.printf("Saving  DIR  %s\n", display)

	if e.inv.Switches.Move {
		e.stack.Push(RemoveDir{Path: filepath.Join(dir.fs, name)})
	}

	return true, nil
}

// addSpecial stores a special file entry.
func (e *Engine) addSpecial(dir walkDir, name string, info os.FileInfo) (bool, error) {
	display := dir.display(name)
	fsPath := filepath.Join(dir.fs, name)

	payload, err := readSpecial(fsPath, info)
	if err != nil {
		e.report(display, err)
		return false, nil
	}

	mark := e.stack.Mark()
	meta := EntryMeta{ModTime: info.ModTime(), Attr: attrOf(info)}
	if err := e.arc.NewEntry(e.storeDir(dir), name, meta); err != nil {
		e.report(display, err)
		return false, nil
	}

	if err := e.arc.AddSpecial(payload); err != nil {
		_ = e.stack.Unwind(mark)
		return false, err
	}

	e.stack.Relax(mark)
	e.printf("Saving  SPC  %s\n", display)

	if e.inv.Switches.Move {
		e.removeSource(display, fsPath)
	}

	return true, nil
}

// removeSource deletes an archived source for move semantics.
func (e *Engine) removeSource(display string, fsPath string) {
	if err := os.Remove(fsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.report(display, withCode(fmt.Errorf("remove: %w", err), CodeRemove))
	}
}
