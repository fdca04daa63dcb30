// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import "context"

// delete tombstones selected entries. Space is reclaimed only by Compact.
func (e *Engine) delete(ctx context.Context, patterns []string) error {
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

		e.printf("Deleting %s\n", entry.FullPath())
		if err := e.arc.Delete(entry); err != nil {
			return err
		}
	}

	return nil
}
