// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/charmbracelet/log"
)

// MethodID identifies a codec or a structural entry kind stored in the
// entry header kind byte.
type MethodID uint8

// Entry kinds. Codec methods occupy the low ids.
const (
	// MethodCopy stores content verbatim; it is the unconditional fallback.
	MethodCopy MethodID = 0
	// MethodLZSS is LZSS compression.
	MethodLZSS MethodID = 1
	// MethodHuffman is static Huffman coding.
	MethodHuffman MethodID = 2
	// MethodLZ4 is LZ4 frame compression.
	MethodLZ4 MethodID = 3
	// MethodZstd is Zstandard compression.
	MethodZstd MethodID = 4
	// MethodDir marks a directory entry.
	MethodDir MethodID = 14
	// MethodSpecial marks a special file entry (symlink, fifo, device).
	MethodSpecial MethodID = 15
	// MethodTombstone marks a deleted entry.
	MethodTombstone MethodID = 0xff
)

// maxCodecMethod is the highest codec id a numeric switch may select.
const maxCodecMethod = MethodZstd

// IsCodec reports whether id names a codec (not a structural marker).
func (id MethodID) IsCodec() bool {
	return id <= maxCodecMethod
}

// Entry describes one archived item.
type Entry struct {
	// Path is the archive-relative directory, "/" separated, possibly empty.
	Path string `json:"path" yaml:"path"`
	// Name is the member name.
	Name string `json:"name" yaml:"name"`
	// Kind is the codec id, MethodDir, MethodSpecial or MethodTombstone.
	Kind MethodID `json:"kind" yaml:"kind"`
	// OriginalSize is the uncompressed content length.
	OriginalSize uint32 `json:"original_size" yaml:"original_size"`
	// CompressedSize is the stored payload length.
	CompressedSize uint32 `json:"compressed_size" yaml:"compressed_size"`
	// CRC is the IEEE CRC-32 of the uncompressed content.
	CRC uint32 `json:"crc" yaml:"crc"`
	// TimeStamp is the modification time as Unix seconds.
	TimeStamp uint32 `json:"timestamp" yaml:"timestamp"`
	// Attr holds platform attributes (file mode bits).
	Attr uint32 `json:"attr,omitempty" yaml:"attr,omitempty"`

	// offset is the header position in the archive file.
	offset int64
	// dataOffset is the first payload byte position.
	dataOffset int64
}

// FullPath returns path and name joined with "/".
func (e *Entry) FullPath() string {
	return joinArchivePath(e.Path, e.Name)
}

// ModTime returns TimeStamp as time.Time.
func (e *Entry) ModTime() time.Time {
	return time.Unix(int64(e.TimeStamp), 0)
}

// Mode returns Attr as file mode.
func (e *Entry) Mode() os.FileMode {
	return os.FileMode(e.Attr)
}

// IsDeleted reports whether the entry is a tombstone.
func (e *Entry) IsDeleted() bool {
	return e.Kind == MethodTombstone
}

// EntryMeta carries filesystem metadata for a new entry.
type EntryMeta struct {
	ModTime time.Time
	Attr    uint32
}

// Command is the first letter of the command token.
type Command byte

// Commands.
const (
	CommandAdd      Command = 'a'
	CommandExtract  Command = 'e'
	CommandPExtract Command = 'x'
	CommandFreshen  Command = 'f'
	CommandUpdate   Command = 'u'
	CommandList     Command = 'l'
	CommandDelete   Command = 'd'
	CommandTest     Command = 't'
	CommandCompact  Command = 'c'
)

// Switches holds the parsed per-command switches.
type Switches struct {
	// Methods lists codecs requested by numeric switches in order, deduplicated.
	Methods []MethodID `json:"methods,omitempty" yaml:"methods,omitempty"`
	// Quiet suppresses progress output and answers prompts with yes.
	Quiet bool `json:"quiet,omitempty" yaml:"quiet,omitempty"`
	// AssumeYes answers every prompt with yes.
	AssumeYes bool `json:"assume_yes,omitempty" yaml:"assume_yes,omitempty"`
	// FullList prints checksum and path in listings.
	FullList bool `json:"full_list,omitempty" yaml:"full_list,omitempty"`
	// UseAttr restores platform attributes on extract.
	UseAttr bool `json:"use_attr,omitempty" yaml:"use_attr,omitempty"`
	// Touch stamps extracted items with the current time.
	Touch bool `json:"touch,omitempty" yaml:"touch,omitempty"`
	// Recurse walks subdirectories.
	Recurse bool `json:"recurse,omitempty" yaml:"recurse,omitempty"`
	// Special archives special files.
	Special bool `json:"special,omitempty" yaml:"special,omitempty"`
	// SaveDirs creates directory entries.
	SaveDirs bool `json:"save_dirs,omitempty" yaml:"save_dirs,omitempty"`
	// Move removes sources after they are archived.
	Move bool `json:"move,omitempty" yaml:"move,omitempty"`
	// ExcludePaths stores or restores names without their directory part.
	ExcludePaths bool `json:"exclude_paths,omitempty" yaml:"exclude_paths,omitempty"`
}

// UsePath reports whether archive paths are stored and honored.
func (s Switches) UsePath() bool {
	return !s.ExcludePaths
}

// Invocation is a validated command with its switches.
type Invocation struct {
	Switches Switches `json:"switches" yaml:"switches"`
	Command  Command  `json:"command" yaml:"command"`
}

// Options configures an Engine.
type Options struct {
	// Out receives listings and progress lines. Default is os.Stdout.
	Out io.Writer `json:"-" yaml:"-"`
	// In supplies answers to interactive prompts. Default is os.Stdin.
	In io.Reader `json:"-" yaml:"-"`
	// Logger receives error and debug reports. Default writes warnings to os.Stderr.
	Logger *log.Logger `json:"-" yaml:"-"`
	// Now returns the current time for the touch switch. Default is time.Now.
	Now func() time.Time `json:"-" yaml:"-"`
	// Dir is the base directory for relative patterns and extraction. Default is ".".
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// DefaultMethods are queued when no numeric switch is given.
	DefaultMethods []MethodID `json:"default_methods,omitempty" yaml:"default_methods,omitempty"`
	// Progress enables progress bars while packing and unpacking.
	Progress bool `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// DefaultPattern selects every file.
const DefaultPattern = "*"

// applyDefaults fills zero-valued engine options with defaults.
func (opts *Options) applyDefaults() {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.In == nil {
		opts.In = os.Stdin
	}

	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "harc",
			Level:  log.WarnLevel,
		})
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Dir == "" {
		opts.Dir = "."
	}

	if len(opts.DefaultMethods) == 0 {
		opts.DefaultMethods = []MethodID{MethodLZSS}
	}
}

// joinArchivePath joins archive directory and name with "/".
func joinArchivePath(dir string, name string) string {
	if dir == "" {
		return name
	}

	return path.Join(dir, name)
}
