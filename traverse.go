// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// addInDir walks one directory level, dispatching candidates by kind. It
// reports whether anything was stored. Actions pushed while handling this
// level are reconciled before returning to the parent.
func (e *Engine) addInDir(ctx context.Context, dir walkDir, matcher *nameMatcher) (bool, error) {
	items, err := os.ReadDir(dir.fs)
	if err != nil {
		e.report(dir.fs, withCode(fmt.Errorf("open directory: %w", err), CodeDirOpen))
		return false, nil
	}

	sw := e.inv.Switches
	mark := e.stack.Mark()
	found := false
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		name := item.Name()
		info, err := os.Lstat(filepath.Join(dir.fs, name))
		if err != nil {
			e.report(dir.display(name), err)
			continue
		}

		if e.arc.SameFile(info) {
			continue
		}

		var stored bool
		switch classify(info) {
		case kindDir:
			if sw.SaveDirs && e.include.Include(e.arc, e.storeDir(dir), name, info.ModTime()) {
				if stored, err = e.addDir(dir, name, info); err != nil {
					return found, err
				}
			}

			if sw.Recurse {
				sub, err := e.addInDir(ctx, dir.child(name), matcher)
				if err != nil {
					return found, err
				}

				stored = stored || sub
			}
		case kindSpecial:
			if !sw.Special || !matcher.Match(name) {
				continue
			}

			if e.include.Include(e.arc, e.storeDir(dir), name, info.ModTime()) {
				if stored, err = e.addSpecial(dir, name, info); err != nil {
					return found, err
				}
			}
		case kindRegular:
			if !matcher.Match(name) {
				continue
			}

			if e.include.Include(e.arc, e.storeDir(dir), name, info.ModTime()) {
				if stored, err = e.packFile(dir, name, info); err != nil {
					return found, err
				}
			}
		}

		found = found || stored
	}

	_ = e.stack.Reconcile(mark)
	return found, nil
}
