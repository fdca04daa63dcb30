// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/harc"
)

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := execute(t.Context(), args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String()
}

func TestExecuteAddListExtract(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	archive := filepath.Join(t.TempDir(), "test.ha")
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello harc"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if code, out := runCLI(t, "a10", archive, filepath.Join(src, "*.txt")); code != 0 {
		t.Fatalf("add exit=%d, want 0, out=%q", code, out)
	}

	code, out := runCLI(t, "l", archive)
	if code != 0 {
		t.Fatalf("list exit=%d, want 0", code)
	}
	if !strings.Contains(out, "a.txt") {
		t.Fatalf("listing=%q, want a.txt", out)
	}

	if code, _ := runCLI(t, "tq", archive); code != 0 {
		t.Fatalf("test exit=%d, want 0", code)
	}
}

func TestExecuteExitCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.ha")
	bogus := filepath.Join(dir, "bogus.ha")
	if err := os.WriteFile(bogus, []byte("not an archive"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want harc.ErrorCode
	}{
		{name: "missing args", args: []string{"l"}, want: harc.CodeUsage},
		{name: "unknown command", args: []string{"z", missing}, want: harc.CodeUsage},
		{name: "bad switch", args: []string{"a9", missing}, want: harc.CodeInvalidSwitch},
		{name: "missing archive", args: []string{"l", missing}, want: harc.CodeOpen},
		{name: "invalid archive", args: []string{"l", bogus}, want: harc.CodeInvalidArchive},
		{name: "bad log level", args: []string{"--log-level", "loud", "l", bogus}, want: harc.CodeUsage},
	}

	for _, tt := range tests {
		if code, _ := runCLI(t, tt.args...); code != int(tt.want) {
			t.Fatalf("%s: exit=%d, want %d", tt.name, code, tt.want)
		}
	}
}

func TestExitErrorFor(t *testing.T) {
	t.Parallel()

	err := exitErrorFor(harc.ErrNoEntries)
	if err.Code != harc.CodeNoFiles {
		t.Fatalf("code=%d, want %d", err.Code, harc.CodeNoFiles)
	}

	if err.Error() != harc.ErrNoEntries.Error() {
		t.Fatalf("Error()=%q, want %q", err.Error(), harc.ErrNoEntries.Error())
	}

	empty := &ExitError{Code: harc.CodeWrite}
	if empty.Error() != "exit status 5" {
		t.Fatalf("Error()=%q, want exit status 5", empty.Error())
	}
}
