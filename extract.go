// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// extract restores selected entries below the base directory. The x
// command recreates archived paths; e flattens them.
func (e *Engine) extract(ctx context.Context, patterns []string) error {
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

		dest, err := e.extractTarget(entry)
		if err != nil {
			e.report(entry.FullPath(), err)
			continue
		}

		switch entry.Kind {
		case MethodSpecial:
			e.extractSpecial(entry, dest)
		case MethodDir:
			e.extractDir(entry, dest)
		default:
			e.extractFile(entry, dest)
		}
	}

	return nil
}

// extractTarget resolves the destination of entry and creates its parent
// directories when paths are preserved.
func (e *Engine) extractTarget(entry *Entry) (string, error) {
	stored := entry.Name
	if e.inv.Switches.UsePath() {
		stored = entry.FullPath()
	}

	rel, err := normalizeExtractEntryPath(stored)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, stored)
	}

	if err := checkExtractParents(e.opts.Dir, rel); err != nil {
		return "", err
	}

	dest := filepath.Join(e.opts.Dir, filepath.FromSlash(rel))
	if parent := filepath.Dir(dest); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", withCode(fmt.Errorf("make path: %w", err), CodeMkdir)
		}
	}

	return dest, nil
}

// checkExtractParents walks the directories above rel inside base and
// rejects any that is a symlink or not a directory, so earlier entries
// cannot redirect later ones outside base. Missing parents end the walk.
func checkExtractParents(base string, rel string) error {
	parts := strings.Split(rel, "/")
	current := base
	for _, part := range parts[:len(parts)-1] {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		if err != nil {
			return withCode(fmt.Errorf("inspect %s: %w", current, err), CodeOpen)
		}

		if info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrInvalidExtractPath, current)
		}
	}

	return nil
}

// extractTime returns the timestamp applied to restored items.
func (e *Engine) extractTime(entry *Entry) time.Time {
	if e.inv.Switches.Touch {
		return e.opts.Now()
	}

	return entry.ModTime()
}

// extractSpecial recreates a special file, asking before replacing one.
func (e *Engine) extractSpecial(entry *Entry, dest string) {
	if _, err := os.Lstat(dest); err == nil {
		if !e.prompt.Confirm("Overwrite special file %s ? (y/n/a) ", dest) {
			return
		}

		if err := os.Remove(dest); err != nil {
			e.report(dest, withCode(fmt.Errorf("remove: %w", err), CodeRemove))
			return
		}
	}

	data, err := e.arc.OpenData(entry)
	if err != nil {
		e.report(dest, err)
		return
	}

	payload, err := io.ReadAll(data)
	if err != nil {
		e.report(dest, withCode(fmt.Errorf("read archive: %w", err), CodeRead))
		return
	}

	if err := makeSpecial(dest, payload); err != nil {
		e.report(dest, withCode(err, CodeSpecial))
		return
	}

	if err := setMeta(dest, e.extractTime(entry), entry.Mode(), false); err != nil {
		e.report(dest, err)
	}

	e.printf("Making    SPC  %s\n", dest)
}

// extractDir recreates a directory. An existing one is only touched after
// confirmation when attributes are restored.
func (e *Engine) extractDir(entry *Entry, dest string) {
	info, statErr := os.Lstat(dest)
	exists := statErr == nil
	if exists && !info.IsDir() {
		e.report(dest, fmt.Errorf("%w: %s is not a directory", ErrInvalidExtractPath, dest))
		return
	}

	if exists && e.inv.Switches.UseAttr {
		if !e.prompt.Confirm("Remake directory %s ? (y/n/a) ", dest) {
			return
		}
	}

	if !exists {
		if err := os.Mkdir(dest, 0o755); err != nil {
			e.report(dest, withCode(fmt.Errorf("make directory: %w", err), CodeMkdir))
			return
		}
	}

	if err := setMeta(dest, e.extractTime(entry), entry.Mode(), e.inv.Switches.UseAttr); err != nil {
		e.report(dest, err)
	}

	e.printf("Making    DIR  %s\n", dest)
}

// extractFile decodes a regular file. The output is created exclusively; an
// existing file is replaced only after confirmation. A failed decode removes
// the partial output.
func (e *Engine) extractFile(entry *Entry, dest string) {
	f, err := openExtractFile(dest)
	if errors.Is(err, os.ErrExist) {
		if !e.prompt.Confirm("Overwrite file %s ? (y/n/a) ", dest) {
			return
		}

		if err := os.Remove(dest); err != nil {
			e.report(dest, withCode(fmt.Errorf("remove: %w", err), CodeRemove))
			return
		}

		f, err = openExtractFile(dest)
	}

	if err != nil {
		e.report(dest, withCode(fmt.Errorf("create: %w", err), CodeOpen))
		return
	}

	e.printf("Unpacking %s  %s\n", MethodName(entry.Kind), dest)
	crc, err := e.decodeEntry(entry, f, "Unpacking", CloseRemove{File: f, Path: dest, Relaxable: true})
	if err != nil {
		e.report(dest, err)
		return
	}

	if err := f.Close(); err != nil {
		e.report(dest, withCode(fmt.Errorf("close: %w", err), CodeWrite))
		return
	}

	if crc != entry.CRC {
		e.report(dest, fmt.Errorf("%w: stored %08x, got %08x", ErrCRCMismatch, entry.CRC, crc))
	}

	if err := setMeta(dest, e.extractTime(entry), entry.Mode(), e.inv.Switches.UseAttr); err != nil {
		e.report(dest, err)
	}
}

// openExtractFile creates path for writing and fails if it already exists.
func openExtractFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// normalizeExtractEntryPath validates and normalizes archive entry path for safe extraction.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" {
		return "", ErrInvalidExtractPath
	}
	if strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasWindowsAbsDrivePrefix reports "C:" style prefixes.
func hasWindowsAbsDrivePrefix(path string) bool {
	return len(path) >= 2 && isASCIIAlpha(path[0]) && path[1] == ':'
}

// isASCIIAlpha reports whether b is an ASCII letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
