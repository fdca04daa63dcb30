// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

/*
Package harc is the command engine of a multi-codec file archiver. It
selects files by pattern, runs every queued codec over each file, keeps the
smallest result and mutates the archive so that a failure at any point
leaves neither stray files nor a damaged archive.

Commands (the first letter of the command token, switches follow):

	a  add files           e  extract files, flattening paths
	f  freshen files       x  extract files with pathnames
	u  update files        l  list files
	d  delete files        t  test files
	c  compact archive

# Running a command

	inv, err := harc.ParseInvocation("a12r")
	if err != nil {
	    return err
	}
	err = harc.NewEngine(inv, harc.Options{}).Run(ctx, "backup.ha", []string{"src/*.go"})

Per-item failures (unreadable source, checksum mismatch) are logged and the
command continues; Run then returns an error wrapping ErrItemsFailed whose
exit code (CodeOf) is that of the last failure.

# Codecs

Methods 0..4 are copy, LZSS, static Huffman, LZ4 and Zstandard. Copy is
always appended to the trial queue. Every trial overwrites the same archive
offset; the bytes left in the archive always belong to the accepted method.

# Rollback

Each engine owns a CleanupStack. Operations push undo actions before a
risky step, relax them once the step is committed and unwind them on
failure. Run unwinds the whole stack before it returns.

# Archive format

An archive is the magic "HARC", a version byte and a chain of entries:
a 21 byte little endian header (kind, compressed size, original size,
CRC-32, time, attributes), NUL terminated path and name, then the payload.
Deleting an entry rewrites its kind to a tombstone; Compact drops
tombstones. A damaged tail left by a crash is cut off on the next writable
open.

# Reading

	entries, err := harc.ListEntries("backup.ha")
	if err != nil {
	    return err
	}
	_ = entries
*/
package harc
