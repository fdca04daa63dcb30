// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"errors"
	"io/fs"
)

// Sentinel errors for archive operations. Use errors.Is in callers.
var (
	// ErrUnknownCommand means the command letter is not recognized.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidSwitch means a switch is not valid for the selected command.
	ErrInvalidSwitch = errors.New("invalid switch")
	// ErrMissingArchive means no archive path was given on the command line.
	ErrMissingArchive = errors.New("archive name missing")
	// ErrInvalidArchive means the file is not an archive or its header is damaged.
	ErrInvalidArchive = errors.New("invalid archive: missing or bad header")
	// ErrArchiveReadOnly means a mutating operation was called on a read-only archive.
	ErrArchiveReadOnly = errors.New("archive opened read-only")
	// ErrArchiveClosed means the archive is already closed.
	ErrArchiveClosed = errors.New("archive already closed")
	// ErrNoEntries means no archive entry matched the selection.
	ErrNoEntries = errors.New("no files found")
	// ErrNoPendingEntry means entry data was written without NewEntry.
	ErrNoPendingEntry = errors.New("no pending entry")
	// ErrUnknownMethod means the entry kind does not name a known method.
	ErrUnknownMethod = errors.New("unknown compression method")
	// ErrCRCMismatch means decoded content does not match the stored checksum.
	ErrCRCMismatch = errors.New("CRC check failed")
	// ErrSizeMismatch means decoded content length differs from the stored original size.
	ErrSizeMismatch = errors.New("decoded size mismatch")
	// ErrSizeOverflow means the size exceeds the uint32 archive field limit.
	ErrSizeOverflow = errors.New("size exceeds uint32 archive limit")
	// ErrInvalidEntryName means the entry name is empty or contains NUL.
	ErrInvalidEntryName = errors.New("invalid entry name")
	// ErrInvalidExtractPath means archive entry path is unsafe for extraction.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrSpecialUnsupported means special files cannot be handled on this platform.
	ErrSpecialUnsupported = errors.New("special files not supported")
	// ErrInvalidSpecialPayload means a stored special file payload is malformed.
	ErrInvalidSpecialPayload = errors.New("invalid special file payload")
	// ErrArchiveWrite means writing to the archive file failed.
	ErrArchiveWrite = errors.New("archive write failed")
	// ErrItemsFailed means the command finished but some items reported errors.
	ErrItemsFailed = errors.New("some items failed")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
)

// ErrorCode is the process exit status attached to a reported error.
type ErrorCode int

// Exit codes. CodeUsage is fixed for argument and usage errors.
const (
	CodeOK ErrorCode = iota
	CodeUsage
	CodeInvalidSwitch
	CodeOpen
	CodeRead
	CodeWrite
	CodeInvalidArchive
	CodeNoFiles
	CodeCRC
	CodeRemove
	CodeMkdir
	CodeDirOpen
	CodeSpecial
	CodeMethod
	CodeInterrupted
)

// errorCodes maps sentinel errors to exit codes, first match wins.
var errorCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrUnknownCommand, CodeUsage},
	{ErrMissingArchive, CodeUsage},
	{ErrInvalidSwitch, CodeInvalidSwitch},
	{ErrInvalidArchive, CodeInvalidArchive},
	{ErrArchiveWrite, CodeWrite},
	{ErrNoEntries, CodeNoFiles},
	{ErrCRCMismatch, CodeCRC},
	{ErrSizeMismatch, CodeCRC},
	{ErrUnknownMethod, CodeMethod},
	{ErrSpecialUnsupported, CodeSpecial},
	{ErrInvalidSpecialPayload, CodeSpecial},
	{ErrInvalidExtractPath, CodeOpen},
	{context.Canceled, CodeInterrupted},
	{context.DeadlineExceeded, CodeInterrupted},
	{fs.ErrNotExist, CodeOpen},
	{fs.ErrPermission, CodeOpen},
	{fs.ErrExist, CodeOpen},
}

// CodeOf returns the exit code for err; unknown errors map to CodeWrite.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}

	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}

	for _, item := range errorCodes {
		if errors.Is(err, item.err) {
			return item.code
		}
	}

	return CodeWrite
}

// codedError pins an explicit exit code to an error chain.
type codedError struct {
	err  error
	code ErrorCode
}

// withCode attaches code to err unless err is nil.
func withCode(err error, code ErrorCode) error {
	if err == nil {
		return nil
	}

	return &codedError{err: err, code: code}
}

// Error returns the wrapped error message.
func (e *codedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *codedError) Unwrap() error {
	return e.err
}
