package archive

// FileMut is a File that also supports Write and Flush (§4.F). Short
// overwrites entirely within the existing payload region are written in
// place; a write that would exceed it relocates the whole payload to the
// end of the host file, preserving the bytes before the cursor.
type FileMut struct {
	File
}

func newFileMut(a *Archive, chain ChainIndex, idx int) *FileMut {
	return &FileMut{File: File{a: a, chain: chain, idx: idx}}
}

func (f *FileMut) mutEntry() (*Chain, *Entry, error) {
	chain, ok := f.a.bm.get(f.chain)
	if !ok {
		return nil, nil, newErr("file", "", KindInvalidChainIndex, nil)
	}
	e := chain.GetMut(f.idx)
	if e == nil || !e.IsFile() {
		return nil, nil, newErr("file", "", KindCorruptedFile, nil)
	}
	return chain, e, nil
}

// Write writes len(p) bytes starting at the current cursor and advances
// it. It returns a non-nil error when n != len(p).
func (f *FileMut) Write(p []byte) (int, error) {
	chain, e, err := f.mutEntry()
	if err != nil {
		return 0, err
	}

	end := f.cursor + int64(len(p))
	if end <= int64(e.Size) {
		if _, err := f.a.file.WriteAt(p, int64(e.PosData)+f.cursor); err != nil {
			return 0, newErr("write", "", KindIO, err)
		}
		f.cursor = end
		return len(p), nil
	}

	prefix := make([]byte, f.cursor)
	if f.cursor > 0 {
		if _, err := f.a.fh.ReadAt(prefix, int64(e.PosData)); err != nil {
			return 0, newErr("write", "", KindIO, err)
		}
	}
	newOffset, err := f.a.currentLength()
	if err != nil {
		return 0, err
	}
	if len(prefix) > 0 {
		if _, err := f.a.file.WriteAt(prefix, newOffset); err != nil {
			return 0, newErr("write", "", KindIO, err)
		}
	}
	if _, err := f.a.file.WriteAt(p, newOffset+f.cursor); err != nil {
		return 0, newErr("write", "", KindIO, err)
	}

	e.PosData = uint64(newOffset)
	e.Size = uint32(end)
	f.cursor = end

	offset, _ := chain.FileOffsetForEntry(f.idx)
	if err := writeEntryAt(f.a.cipher, f.a.fh, offset, e); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush rewrites the entry's on-disk metadata from its current in-memory
// state. Every relocating Write already does this synchronously; Flush
// exists so a caller that only performed in-place overwrites, or no
// writes at all, still has a well-defined durability point to call before
// Close (§4.F).
func (f *FileMut) Flush() error {
	chain, e, err := f.mutEntry()
	if err != nil {
		return err
	}
	offset, _ := chain.FileOffsetForEntry(f.idx)
	return writeEntryAt(f.a.cipher, f.a.fh, offset, e)
}

// Close flushes and then releases the handle. Every Write has already
// reached the host file by the time it returns, so Close writes nothing
// beyond the entry's unchanged metadata.
func (f *FileMut) Close() error {
	return f.Flush()
}
