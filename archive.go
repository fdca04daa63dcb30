// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

// OpenMode selects how an archive file is opened.
type OpenMode string

const (
	// OpenReadOnly opens an existing archive for reading.
	OpenReadOnly OpenMode = "read_only"
	// OpenExisting opens an existing archive for reading and writing.
	OpenExisting OpenMode = "existing"
	// OpenCreate opens an archive for reading and writing, creating it if absent.
	OpenCreate OpenMode = "create"
)

const (
	// archiveMagic starts every archive file.
	archiveMagic = "HARC"
	// archiveVersion is the only supported container version.
	archiveVersion = 1
	// archiveHeaderSize is magic plus version byte.
	archiveHeaderSize = len(archiveMagic) + 1
	// entryFixedSize is kind u8 followed by clen, olen, crc, time and attr u32 fields.
	entryFixedSize = 1 + 5*4
	// maxEntryNameLen bounds path and name strings while scanning the entry chain.
	maxEntryNameLen = 4096
	// archiveScanBufferSize is the sequential read buffer for chain parsing.
	archiveScanBufferSize = 64 * 1024
	// archiveWriteBufferSize is the buffered writer size used for trials.
	archiveWriteBufferSize = 64 * 1024
)

// Archive is an open archive file. It keeps the parsed entry chain in
// memory and appends new entries at the end of the chain.
// Archive is not safe for concurrent use.
type Archive struct {
	file  *os.File
	info  os.FileInfo
	stack *CleanupStack
	// pending is the entry between NewEntry and its finalization.
	pending *pendingEntry
	path    string
	mode    OpenMode
	// entries holds the chain in file order, tombstones included.
	entries []Entry
	// cursor is the next entries index visited by Next.
	cursor int
	// size is the end of the valid chain.
	size int64
	// dropped is the length of a damaged tail cut off on open.
	dropped int64
	created bool
	closed  bool
}

// pendingEntry tracks one entry being written.
type pendingEntry struct {
	w  *bufio.Writer
	cw *countingWriter
	// entry carries final header values once finalized.
	entry Entry
	// superseded lists entries index and kind of live copies tombstoned on finalize.
	superseded []supersededEntry
	// trials counts BeginTrial calls; acceptedTrial is the trial accepted last.
	trials        int
	acceptedTrial int
	// lastWritten is the byte count of the last finished trial.
	lastWritten int64
	accepted    bool
	inTrial     bool
	done        bool
	rolledBack  bool
}

// supersededEntry remembers the kind an older entry had before it was tombstoned.
type supersededEntry struct {
	index int
	kind  MethodID
}

// OpenArchive opens the archive at path. stack receives the rollback guards
// of entries written through this archive; nil disables them.
func OpenArchive(path string, mode OpenMode, stack *CleanupStack) (*Archive, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrMissingArchive
	}

	flag := os.O_RDWR
	switch mode {
	case OpenReadOnly:
		flag = os.O_RDONLY
	case OpenExisting:
	case OpenCreate:
		flag |= os.O_CREATE
	default:
		return nil, fmt.Errorf("unknown open mode %q", mode)
	}

	_, statErr := os.Stat(path)
	created := mode == OpenCreate && errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{
		file:    f,
		stack:   stack,
		path:    path,
		mode:    mode,
		created: created,
	}

	if err := a.load(); err != nil {
		_ = f.Close()
		if created {
			_ = os.Remove(path)
		}

		return nil, err
	}

	return a, nil
}

// load validates the header and parses the entry chain.
func (a *Archive) load() error {
	info, err := a.file.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}
	a.info = info

	if info.Size() == 0 && a.mode == OpenCreate {
		var header [archiveHeaderSize]byte
		copy(header[:], archiveMagic)
		header[len(archiveMagic)] = archiveVersion
		if _, err := a.file.WriteAt(header[:], 0); err != nil {
			return fmt.Errorf("write archive header: %w", err)
		}

		a.created = true
		a.size = int64(archiveHeaderSize)
		return nil
	}

	var header [archiveHeaderSize]byte
	if _, err := a.file.ReadAt(header[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s", ErrInvalidArchive, a.path)
		}

		return fmt.Errorf("read archive header: %w", err)
	}

	if string(header[:len(archiveMagic)]) != archiveMagic || header[len(archiveMagic)] != archiveVersion {
		return fmt.Errorf("%w: %s", ErrInvalidArchive, a.path)
	}

	end, err := a.parseChain(info.Size())
	if err != nil {
		return err
	}

	a.size = end
	a.dropped = info.Size() - end
	if a.dropped > 0 && a.writable() {
		if err := a.file.Truncate(end); err != nil {
			return fmt.Errorf("truncate damaged archive tail: %w", err)
		}
	}

	return nil
}

// parseChain reads entries until the file end or the first entry that does
// not validate. It returns the end offset of the valid chain.
func (a *Archive) parseChain(size int64) (int64, error) {
	off := int64(archiveHeaderSize)
	br := bufio.NewReaderSize(io.NewSectionReader(a.file, off, size-off), archiveScanBufferSize)

	var spill []byte
	for off < size {
		var fields [entryFixedSize]byte
		if _, err := io.ReadFull(br, fields[:]); err != nil {
			if isTruncation(err) {
				return off, nil
			}

			return 0, fmt.Errorf("read entry header: %w", err)
		}

		e := Entry{
			Kind:           MethodID(fields[0]),
			CompressedSize: binary.LittleEndian.Uint32(fields[1:5]),
			OriginalSize:   binary.LittleEndian.Uint32(fields[5:9]),
			CRC:            binary.LittleEndian.Uint32(fields[9:13]),
			TimeStamp:      binary.LittleEndian.Uint32(fields[13:17]),
			Attr:           binary.LittleEndian.Uint32(fields[17:21]),
			offset:         off,
		}
		if !knownKind(e.Kind) {
			return off, nil
		}

		dir, dirBytes, err := readNullTerminatedBuffered(br, &spill)
		if err != nil {
			if isTruncation(err) {
				return off, nil
			}

			return 0, fmt.Errorf("read entry path: %w", err)
		}

		name, nameBytes, err := readNullTerminatedBuffered(br, &spill)
		if err != nil {
			if isTruncation(err) {
				return off, nil
			}

			return 0, fmt.Errorf("read entry name: %w", err)
		}

		if name == "" {
			return off, nil
		}

		e.Path = dir
		e.Name = name
		e.dataOffset = off + entryFixedSize + int64(dirBytes) + int64(nameBytes)
		end := e.dataOffset + int64(e.CompressedSize)
		if end > size {
			return off, nil
		}

		if _, err := br.Discard(int(e.CompressedSize)); err != nil {
			if isTruncation(err) {
				return off, nil
			}

			return 0, fmt.Errorf("skip entry data: %w", err)
		}

		a.entries = append(a.entries, e)
		off = end
	}

	return off, nil
}

// isTruncation reports whether err marks a damaged or short chain tail.
func isTruncation(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, errNameTooLong)
}

// errNameTooLong marks a string field that ran past maxEntryNameLen.
var errNameTooLong = errors.New("entry string too long")

// readNullTerminatedBuffered reads a NUL-terminated string from a buffered stream.
// The returned length includes the terminator.
func readNullTerminatedBuffered(br *bufio.Reader, spill *[]byte) (string, int, error) {
	consumed := 0
	*spill = (*spill)[:0]

	for {
		chunk, err := br.ReadSlice(0)
		consumed += len(chunk)
		if consumed > maxEntryNameLen+1 {
			return "", 0, errNameTooLong
		}

		if err == bufio.ErrBufferFull {
			*spill = append(*spill, chunk...)
			continue
		}

		if err != nil {
			return "", 0, err
		}

		segment := chunk[:len(chunk)-1]
		if len(*spill) == 0 {
			return string(segment), consumed, nil
		}

		*spill = append(*spill, segment...)
		return string(*spill), consumed, nil
	}
}

// Path returns the archive file path.
func (a *Archive) Path() string {
	return a.path
}

// Dropped returns the length of the damaged tail discarded on open.
func (a *Archive) Dropped() int64 {
	return a.dropped
}

// SameFile reports whether info describes the archive file itself.
func (a *Archive) SameFile(info os.FileInfo) bool {
	return a.info != nil && info != nil && os.SameFile(a.info, info)
}

// Reset rewinds iteration to the first entry.
func (a *Archive) Reset() {
	a.cursor = 0
}

// Next returns the next live entry matched by sel, or nil at the end.
// A nil selector matches everything.
func (a *Archive) Next(sel *Selector) *Entry {
	for a.cursor < len(a.entries) {
		e := &a.entries[a.cursor]
		a.cursor++
		if e.IsDeleted() {
			continue
		}

		if sel == nil || sel.Match(e) {
			out := *e
			return &out
		}
	}

	return nil
}

// Lookup returns the live entry stored under exactly dir and name. It does
// not touch the Next cursor.
func (a *Archive) Lookup(dir string, name string) (*Entry, bool) {
	key := archiveKey(dir, name)
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := &a.entries[i]
		if e.IsDeleted() {
			continue
		}

		if archiveKey(e.Path, e.Name) == key {
			out := *e
			return &out, true
		}
	}

	return nil, false
}

// Len returns the number of live entries.
func (a *Archive) Len() int {
	n := 0
	for i := range a.entries {
		if !a.entries[i].IsDeleted() {
			n++
		}
	}

	return n
}

// NewEntry starts a new entry at the end of the chain. The header is written
// when the entry is finalized, so a crash before that leaves a tail that is
// cut off on the next open. A relaxable guard that truncates the archive
// back to the insertion offset is pushed onto the cleanup stack.
func (a *Archive) NewEntry(dir string, name string, meta EntryMeta) error {
	if err := a.checkWritable(); err != nil {
		return err
	}

	dir = NormalizePath(dir)
	if name == "" || strings.ContainsAny(name, "\x00/") || strings.ContainsRune(dir, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidEntryName, joinArchivePath(dir, name))
	}

	if len(dir) > maxEntryNameLen || len(name) > maxEntryNameLen {
		return fmt.Errorf("%w: %q is too long", ErrInvalidEntryName, name)
	}

	if a.pending != nil && !a.pending.done {
		a.discardPending()
	}

	offset := a.size
	p := &pendingEntry{
		entry: Entry{
			Path:       dir,
			Name:       name,
			Kind:       MethodCopy,
			TimeStamp:  timeToUint32(meta.ModTime),
			Attr:       meta.Attr,
			offset:     offset,
			dataOffset: offset + entryFixedSize + int64(len(dir)+1+len(name)+1),
		},
	}
	a.pending = p

	if a.stack != nil {
		a.stack.Push(Finalizer{
			Relaxable: true,
			Fn:        func() { a.rollbackEntry(p) },
		})
	}

	return nil
}

// BeginTrial positions a writer at the pending entry data offset. Every
// trial overwrites the bytes of the previous one.
func (a *Archive) BeginTrial() (io.Writer, error) {
	p, err := a.pendingForWrite()
	if err != nil {
		return nil, err
	}

	p.cw = &countingWriter{w: archiveWriter{w: io.NewOffsetWriter(a.file, p.entry.dataOffset)}}
	if p.w == nil {
		p.w = bufio.NewWriterSize(p.cw, archiveWriteBufferSize)
	} else {
		p.w.Reset(p.cw)
	}

	p.trials++
	p.inTrial = true
	return p.w, nil
}

// archiveWriter tags write failures with ErrArchiveWrite so callers can
// tell them apart from source and codec errors.
type archiveWriter struct {
	w io.Writer
}

// Write writes p to the archive file.
func (aw archiveWriter) Write(p []byte) (int, error) {
	n, err := aw.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrArchiveWrite, err)
	}

	return n, nil
}

// EndTrial flushes the trial writer and returns the bytes the trial wrote.
func (a *Archive) EndTrial() (int64, error) {
	p, err := a.pendingForWrite()
	if err != nil {
		return 0, err
	}

	if !p.inTrial {
		return 0, fmt.Errorf("%w: no trial in progress", ErrNoPendingEntry)
	}

	p.inTrial = false
	if err := p.w.Flush(); err != nil {
		return p.cw.n, fmt.Errorf("write archive: %w", err)
	}

	p.lastWritten = p.cw.n
	return p.lastWritten, nil
}

// AcceptTrial commits the most recent trial under method. size is the byte
// count the codec reported; it must match what reached the archive.
// With no trial yet, only an empty copy is accepted.
func (a *Archive) AcceptTrial(method MethodID, size int64) error {
	p, err := a.pendingForWrite()
	if err != nil {
		return err
	}

	if !method.IsCodec() {
		return fmt.Errorf("%w: %d", ErrUnknownMethod, method)
	}

	if p.inTrial {
		return fmt.Errorf("%w: trial not finished", ErrNoPendingEntry)
	}

	written := p.lastWritten
	if p.trials == 0 {
		written = 0
	}

	if size != written {
		return fmt.Errorf("%w: codec reported %d bytes, archive received %d", ErrSizeMismatch, size, written)
	}

	if size > math.MaxUint32 {
		return fmt.Errorf("%w: %s compressed size %d", ErrSizeOverflow, p.entry.Name, size)
	}

	p.entry.Kind = method
	p.entry.CompressedSize = uint32(size)
	p.acceptedTrial = p.trials
	p.accepted = true
	return nil
}

// FinalizeFile writes the header of the pending regular file entry. The
// accepted trial must be the last one written.
func (a *Archive) FinalizeFile(originalSize uint32, crc uint32) error {
	p, err := a.pendingForWrite()
	if err != nil {
		return err
	}

	if !p.accepted {
		return fmt.Errorf("%w: no accepted trial", ErrNoPendingEntry)
	}

	if p.acceptedTrial != p.trials {
		return fmt.Errorf("%w: accepted trial was overwritten", ErrNoPendingEntry)
	}

	p.entry.OriginalSize = originalSize
	p.entry.CRC = crc
	return a.finalize(p)
}

// AddDirectory finalizes the pending entry as a directory entry.
func (a *Archive) AddDirectory() error {
	p, err := a.pendingForWrite()
	if err != nil {
		return err
	}

	p.entry.Kind = MethodDir
	p.entry.CompressedSize = 0
	p.entry.OriginalSize = 0
	return a.finalize(p)
}

// AddSpecial finalizes the pending entry as a special file with payload.
func (a *Archive) AddSpecial(payload []byte) error {
	p, err := a.pendingForWrite()
	if err != nil {
		return err
	}

	if int64(len(payload)) > math.MaxUint32 {
		return ErrSizeOverflow
	}

	if _, err := a.file.WriteAt(payload, p.entry.dataOffset); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	p.entry.Kind = MethodSpecial
	p.entry.CompressedSize = uint32(len(payload))
	p.entry.OriginalSize = uint32(len(payload))
	return a.finalize(p)
}

// finalize trims trial leftovers, writes the header and supersedes older
// live copies of the same member.
func (a *Archive) finalize(p *pendingEntry) error {
	end := p.entry.dataOffset + int64(p.entry.CompressedSize)
	if err := a.file.Truncate(end); err != nil {
		return fmt.Errorf("truncate archive: %w", err)
	}

	if _, err := a.file.WriteAt(encodeEntryHeader(&p.entry), p.entry.offset); err != nil {
		return fmt.Errorf("write entry header: %w", err)
	}

	key := archiveKey(p.entry.Path, p.entry.Name)
	for i := range a.entries {
		e := &a.entries[i]
		if e.IsDeleted() || archiveKey(e.Path, e.Name) != key {
			continue
		}

		if err := a.writeKind(e.offset, MethodTombstone); err != nil {
			return err
		}

		p.superseded = append(p.superseded, supersededEntry{index: i, kind: e.Kind})
		e.Kind = MethodTombstone
	}

	a.entries = append(a.entries, p.entry)
	a.size = end
	p.done = true
	return nil
}

// rollbackEntry undoes a pending or finalized entry: superseded copies get
// their kind back and the archive is cut at the insertion offset.
func (a *Archive) rollbackEntry(p *pendingEntry) {
	if a.closed || a.file == nil || p.rolledBack {
		return
	}

	for i := len(p.superseded) - 1; i >= 0; i-- {
		s := p.superseded[i]
		if s.index < len(a.entries) {
			_ = a.writeKind(a.entries[s.index].offset, s.kind)
			a.entries[s.index].Kind = s.kind
		}
	}
	p.superseded = nil

	if p.done {
		if n := len(a.entries); n > 0 && a.entries[n-1].offset == p.entry.offset {
			a.entries = a.entries[:n-1]
		}
	}

	_ = a.file.Truncate(p.entry.offset)
	a.size = p.entry.offset
	p.rolledBack = true
	if a.pending == p {
		a.pending = nil
	}
}

// discardPending drops an unfinished entry without the cleanup stack.
func (a *Archive) discardPending() {
	if a.pending == nil {
		return
	}

	a.rollbackEntry(a.pending)
}

// Delete tombstones entry in place. It does not reclaim space.
func (a *Archive) Delete(entry *Entry) error {
	if err := a.checkWritable(); err != nil {
		return err
	}

	for i := range a.entries {
		e := &a.entries[i]
		if e.offset != entry.offset {
			continue
		}

		if e.IsDeleted() {
			return nil
		}

		if err := a.writeKind(e.offset, MethodTombstone); err != nil {
			return err
		}

		e.Kind = MethodTombstone
		entry.Kind = MethodTombstone
		return nil
	}

	return fmt.Errorf("%w: entry %s not in archive", ErrInvalidEntryName, entry.FullPath())
}

// OpenData returns a reader over the stored payload of entry.
func (a *Archive) OpenData(entry *Entry) (*io.SectionReader, error) {
	if a.closed {
		return nil, ErrArchiveClosed
	}

	return io.NewSectionReader(a.file, entry.dataOffset, int64(entry.CompressedSize)), nil
}

// Close syncs and closes the archive. A newly created archive that holds
// no entries is removed.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}

	if a.pending != nil && !a.pending.done {
		a.discardPending()
	}

	var syncErr error
	if a.writable() {
		syncErr = a.file.Sync()
	}

	closeErr := a.file.Close()
	a.closed = true

	if a.created && len(a.entries) == 0 {
		if err := os.Remove(a.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove empty archive: %w", err)
		}

		return nil
	}

	if syncErr != nil {
		return fmt.Errorf("sync archive: %w", syncErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close archive: %w", closeErr)
	}

	return nil
}

// writable reports whether the archive accepts mutations.
func (a *Archive) writable() bool {
	return a.mode != OpenReadOnly
}

// checkWritable validates the archive is open for writing.
func (a *Archive) checkWritable() error {
	if a.closed {
		return ErrArchiveClosed
	}

	if !a.writable() {
		return ErrArchiveReadOnly
	}

	return nil
}

// pendingForWrite returns the unfinished pending entry.
func (a *Archive) pendingForWrite() (*pendingEntry, error) {
	if err := a.checkWritable(); err != nil {
		return nil, err
	}

	if a.pending == nil || a.pending.done {
		return nil, ErrNoPendingEntry
	}

	return a.pending, nil
}

// writeKind overwrites the kind byte of the entry header at offset.
func (a *Archive) writeKind(offset int64, kind MethodID) error {
	if _, err := a.file.WriteAt([]byte{byte(kind)}, offset); err != nil {
		return fmt.Errorf("write entry kind: %w", err)
	}

	return nil
}

// encodeEntryHeader serializes e into its on-disk header form.
func encodeEntryHeader(e *Entry) []byte {
	var buf bytes.Buffer
	buf.Grow(entryFixedSize + len(e.Path) + len(e.Name) + 2)

	var fields [entryFixedSize]byte
	fields[0] = byte(e.Kind)
	binary.LittleEndian.PutUint32(fields[1:5], e.CompressedSize)
	binary.LittleEndian.PutUint32(fields[5:9], e.OriginalSize)
	binary.LittleEndian.PutUint32(fields[9:13], e.CRC)
	binary.LittleEndian.PutUint32(fields[13:17], e.TimeStamp)
	binary.LittleEndian.PutUint32(fields[17:21], e.Attr)
	buf.Write(fields[:])
	buf.WriteString(e.Path)
	buf.WriteByte(0)
	buf.WriteString(e.Name)
	buf.WriteByte(0)

	return buf.Bytes()
}

// timeToUint32 converts time to uint32 Unix timestamp with bounds clamping.
func timeToUint32(t time.Time) uint32 {
	u := t.Unix()
	if u < 0 {
		return 0
	}

	if u > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(u)
}

// checkedDataSize validates a content size for uint32 entry fields.
func checkedDataSize(name string, size int64) (uint32, error) {
	if size < 0 || size > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s size %d is out of uint32 range", ErrSizeOverflow, name, size)
	}

	return uint32(size), nil
}
