package archive

import (
	"io"
	"time"
)

// File is a read-only view over one archive file entry, bound to the
// (parent chain, entry index) of the File entry that names it (§4.F). It
// keeps an internal byte cursor over [0, size) and translates Read calls
// into positioned reads at pos_data + cursor on the host file.
type File struct {
	a     *Archive
	chain ChainIndex
	idx   int

	cursor int64
}

func newFile(a *Archive, chain ChainIndex, idx int) *File {
	return &File{a: a, chain: chain, idx: idx}
}

func (f *File) entry() (Entry, error) {
	chain, ok := f.a.bm.get(f.chain)
	if !ok {
		return Entry{}, newErr("file", "", KindInvalidChainIndex, nil)
	}
	e, ok := chain.Get(f.idx)
	if !ok || !e.IsFile() {
		return Entry{}, newErr("file", "", KindCorruptedFile, nil)
	}
	return e, nil
}

// Name returns the file's name.
func (f *File) Name() (string, error) {
	e, err := f.entry()
	if err != nil {
		return "", err
	}
	return e.Name, nil
}

// Size returns the file's current payload length in bytes.
func (f *File) Size() (int64, error) {
	e, err := f.entry()
	if err != nil {
		return 0, err
	}
	return int64(e.Size), nil
}

// ModTime returns the file's stored modification time.
func (f *File) ModTime() (time.Time, error) {
	e, err := f.entry()
	if err != nil {
		return time.Time{}, err
	}
	return e.ModifyTime.Time(), nil
}

// Read reads up to len(p) bytes starting at the current cursor. Reading
// past the end of the payload returns 0, io.EOF (§4.F).
func (f *File) Read(p []byte) (int, error) {
	e, err := f.entry()
	if err != nil {
		return 0, err
	}
	remaining := int64(e.Size) - f.cursor
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := f.a.fh.ReadAt(p, int64(e.PosData)+f.cursor)
	f.cursor += int64(n)
	if err != nil && err != io.EOF {
		return n, newErr("read", "", KindIO, err)
	}
	return n, nil
}

// Seek moves the internal cursor, matching io.Seeker semantics relative to
// the file's current size for io.SeekEnd.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	e, err := f.entry()
	if err != nil {
		return 0, err
	}
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = f.cursor + offset
	case io.SeekEnd:
		newOffset = int64(e.Size) + offset
	default:
		return f.cursor, newErr("seek", "", KindIO, nil)
	}
	if newOffset < 0 {
		return f.cursor, newErr("seek", "", KindIO, nil)
	}
	f.cursor = newOffset
	return f.cursor, nil
}

// Close is a no-op: File holds no resources beyond the shared archive
// handle.
func (f *File) Close() error { return nil }
