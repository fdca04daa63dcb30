// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

// ListEntries opens an archive read-only and returns its live entries
// matched by patterns, without payload reads. No patterns selects all.
func ListEntries(path string, patterns ...string) ([]Entry, error) {
	sel, err := NewSelector(patterns)
	if err != nil {
		return nil, err
	}

	arc, err := OpenArchive(path, OpenReadOnly, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = arc.Close() }()

	return collectEntries(arc, sel), nil
}

// collectEntries returns every live entry of arc matched by sel.
func collectEntries(arc *Archive, sel *Selector) []Entry {
	arc.Reset()

	entries := make([]Entry, 0, arc.Len())
	for entry := arc.Next(sel); entry != nil; entry = arc.Next(sel) {
		entries = append(entries, *entry)
	}

	return entries
}
