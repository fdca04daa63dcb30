// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// caseInsensitiveNames reports whether the host filesystem folds name case.
var caseInsensitiveNames = runtime.GOOS == "windows"

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}

// foldCase applies the platform name case normalization.
func foldCase(name string) string {
	if caseInsensitiveNames {
		return strings.ToLower(name)
	}

	return name
}

// archiveKey returns the comparison key for an archive path and name.
func archiveKey(dir string, name string) string {
	return foldCase(joinArchivePath(NormalizePath(dir), name))
}

// splitPattern splits a user pattern into its directory part (filesystem
// form, may be empty) and its name part (defaults to DefaultPattern).
func splitPattern(pattern string) (string, string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "", DefaultPattern
	}

	dir, name := filepath.Split(filepath.FromSlash(pattern))
	if name == "" {
		name = DefaultPattern
	}

	if dir != "" && dir != string(filepath.Separator) {
		dir = strings.TrimSuffix(dir, string(filepath.Separator))
	}

	return dir, name
}

// walkDir is one traversal directory in filesystem and archive form.
type walkDir struct {
	// fs is the directory path used for filesystem calls.
	fs string
	// arc is the normalized archive-relative directory.
	arc string
}

// newWalkDir resolves a pattern directory part against base.
func newWalkDir(base string, dir string) walkDir {
	fsPath := dir
	switch {
	case dir == "":
		fsPath = base
	case !filepath.IsAbs(dir):
		fsPath = filepath.Join(base, dir)
	}

	return walkDir{
		fs:  fsPath,
		arc: NormalizePath(filepath.ToSlash(dir)),
	}
}

// child returns the walkDir of a subdirectory.
func (d walkDir) child(name string) walkDir {
	return walkDir{
		fs:  filepath.Join(d.fs, name),
		arc: joinArchivePath(d.arc, name),
	}
}

// display returns the user-facing name of an item inside d.
func (d walkDir) display(name string) string {
	return joinArchivePath(d.arc, name)
}
