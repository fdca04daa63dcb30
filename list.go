// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// list prints selected entries with totals. Listing ignores the quiet switch.
func (e *Engine) list(patterns []string) error {
	sel, err := NewSelector(patterns)
	if err != nil {
		return withCode(err, CodeUsage)
	}

	entries := collectEntries(e.arc, sel)
	if len(entries) == 0 {
		return ErrNoEntries
	}

	return WriteListing(e.out, entries, e.inv.Switches.FullList)
}

// WriteListing renders entries as a listing table. full adds the CRC and
// stored path of each entry.
func WriteListing(w io.Writer, entries []Entry, full bool) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", 75)

	_, _ = fmt.Fprintln(bw, "  filename        original    compressed   rate     date        time   m")
	if full {
		_, _ = fmt.Fprintln(bw, " CRC-32    path")
	}
	_, _ = fmt.Fprintln(bw, rule)

	var totalOriginal, totalCompressed uint64
	for i := range entries {
		entry := &entries[i]
		if full && i > 0 {
			_, _ = fmt.Fprintln(bw, strings.Repeat("-", 75))
		}

		_, _ = fmt.Fprintf(bw, "  %-15s %-11d %-11d %s   %s  %s\n",
			entry.Name, entry.OriginalSize, entry.CompressedSize,
			formatRatio(uint64(entry.CompressedSize), uint64(entry.OriginalSize)),
			entry.ModTime().Format("2006-01-02  15:04:05"),
			MethodName(entry.Kind))

		if full {
			dir := entry.Path
			if dir == "" {
				dir = "(none)"
			}

			_, _ = fmt.Fprintf(bw, " %08x  %s\n", entry.CRC, dir)
		}

		totalOriginal += uint64(entry.OriginalSize)
		totalCompressed += uint64(entry.CompressedSize)
	}

	_, _ = fmt.Fprintln(bw, rule)
	_, _ = fmt.Fprintf(bw, "  %-4d            %-11d %-11d %s\n",
		len(entries), totalOriginal, totalCompressed, formatRatio(totalCompressed, totalOriginal))

	return bw.Flush()
}
