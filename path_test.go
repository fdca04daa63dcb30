// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"path/filepath"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "slash", in: "/", want: ""},
		{name: "clean", in: "src/engine/core", want: "src/engine/core"},
		{name: "windows", in: `.\src\engine\core\`, want: "src/engine/core"},
		{name: "dot segments", in: "./a/../b//c.txt", want: "b/c.txt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizePath(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizePath(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitPattern(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		in       string
		wantDir  string
		wantName string
	}{
		{name: "empty", in: "", wantDir: "", wantName: "*"},
		{name: "name only", in: "*.go", wantDir: "", wantName: "*.go"},
		{name: "dir and name", in: "src/*.go", wantDir: "src", wantName: "*.go"},
		{name: "nested", in: "a/b/c.txt", wantDir: filepath.Join("a", "b"), wantName: "c.txt"},
		{name: "trailing slash", in: "src/", wantDir: "src", wantName: "*"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir, name := splitPattern(tc.in)
			if dir != tc.wantDir || name != tc.wantName {
				t.Fatalf("splitPattern(%q)=(%q, %q), want (%q, %q)", tc.in, dir, name, tc.wantDir, tc.wantName)
			}
		})
	}
}

func TestWalkDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := newWalkDir(base, "")
	if root.fs != base || root.arc != "" {
		t.Fatalf("newWalkDir(base, \"\")=%+v, want fs=%q arc=\"\"", root, base)
	}

	sub := newWalkDir(base, "src").child("pkg")
	if want := filepath.Join(base, "src", "pkg"); sub.fs != want {
		t.Fatalf("child fs=%q, want %q", sub.fs, want)
	}
	if sub.arc != "src/pkg" {
		t.Fatalf("child arc=%q, want src/pkg", sub.arc)
	}
	if got := sub.display("main.go"); got != "src/pkg/main.go" {
		t.Fatalf("display=%q, want src/pkg/main.go", got)
	}
}

func TestArchiveKey(t *testing.T) {
	t.Parallel()

	if archiveKey("src/", "a.go") != archiveKey("./src", "a.go") {
		t.Fatal("archiveKey must ignore path spelling differences")
	}

	if archiveKey("", "a.go") == archiveKey("src", "a.go") {
		t.Fatal("archiveKey must distinguish directories")
	}
}
