// Package pk2 is a thin convenience layer over pk2/archive, the way
// github.com/diskfs/go-diskfs exposes a slim root package while the real
// filesystem logic lives under filesystem/<fsname>.
package pk2

import "github.com/silkroad-online/pk2/archive"

// Archive is the open handle over a PK2 file.
type Archive = archive.Archive

// Directory, File, and FileMut are the filesystem-style views borrowed
// from an open Archive.
type (
	Directory = archive.Directory
	File      = archive.File
	FileMut   = archive.FileMut
	DirEntry  = archive.DirEntry
	Option    = archive.Option
)

// Open opens an existing PK2 archive. key is ignored for unencrypted
// archives and must match the key used at Create time otherwise.
func Open(path string, key []byte, opts ...Option) (*Archive, error) {
	return archive.Open(path, key, opts...)
}

// Create creates a new PK2 archive, encrypted iff key is non-empty.
func Create(path string, key []byte, opts ...Option) (*Archive, error) {
	return archive.Create(path, key, opts...)
}

// WithLogger attaches a logrus logger to an Archive's diagnostics.
var WithLogger = archive.WithLogger

// Error kinds, re-exported for callers that want to switch on them
// without importing the archive subpackage directly.
var (
	ErrCorruptedFile      = archive.ErrCorruptedFile
	ErrUnsupportedVersion = archive.ErrUnsupportedVersion
	ErrInvalidKey         = archive.ErrInvalidKey
	ErrInvalidPath        = archive.ErrInvalidPath
	ErrNonUnicodePath     = archive.ErrNonUnicodePath
	ErrNotFound           = archive.ErrNotFound
	ErrAlreadyExists      = archive.ErrAlreadyExists
	ErrExpectedFile       = archive.ErrExpectedFile
	ErrExpectedDirectory  = archive.ErrExpectedDirectory
	ErrInvalidChainIndex  = archive.ErrInvalidChainIndex
	ErrIO                 = archive.ErrIO
)

// DefaultKey is the conventional Blowfish key PK2 tooling falls back to
// when the user supplies none.
const DefaultKey = archive.DefaultKey
