package archive

// Directory is a borrowed view over one directory's chain (§4.F). It binds
// back to the archive by the (parent chain, entry index) of the directory
// entry that names it — the same way File does — except for the root,
// which has no parent entry and is flagged instead.
type Directory struct {
	a           *Archive
	parentChain ChainIndex
	entryIdx    int
	root        bool
}

func newDirectory(a *Archive, parentChain ChainIndex, entryIdx int, root bool) *Directory {
	return &Directory{a: a, parentChain: parentChain, entryIdx: entryIdx, root: root}
}

func (d *Directory) selfEntry() (Entry, error) {
	chain, ok := d.a.bm.get(d.parentChain)
	if !ok {
		return Entry{}, newErr("directory", "", KindInvalidChainIndex, nil)
	}
	e, ok := chain.Get(d.entryIdx)
	if !ok || !e.IsDir() {
		return Entry{}, newErr("directory", "", KindCorruptedFile, nil)
	}
	return e, nil
}

// Name returns the directory's own name, or "/" for the root.
func (d *Directory) Name() (string, error) {
	if d.root {
		return "/", nil
	}
	e, err := d.selfEntry()
	if err != nil {
		return "", err
	}
	return e.Name, nil
}

// ownChain returns the ChainIndex this directory's own entries live in
// (its pos_children), not the chain its naming entry lives in.
func (d *Directory) ownChain() (ChainIndex, error) {
	if d.root {
		return RootChainIndex, nil
	}
	e, err := d.selfEntry()
	if err != nil {
		return 0, err
	}
	return e.PosChildren, nil
}

// DirEntry is one entry yielded by Directory.Entries: either a nested
// Directory or a File view, bound back to the archive the same way the
// parent Directory is.
type DirEntry struct {
	Name  string
	IsDir bool
	dir   *Directory
	file  *File
}

// AsDirectory returns the nested Directory view, if this entry is one.
func (e DirEntry) AsDirectory() (*Directory, bool) { return e.dir, e.dir != nil }

// AsFile returns the File view, if this entry is one.
func (e DirEntry) AsFile() (*File, bool) { return e.file, e.file != nil }

// Entries returns every live, named entry of this directory — Empty
// entries and the synthetic "." / ".." links are filtered at this
// boundary, though the block manager enumerates them internally. Calling
// Entries repeatedly with no intervening mutation yields the same
// sequence (§8.5).
func (d *Directory) Entries() ([]DirEntry, error) {
	own, err := d.ownChain()
	if err != nil {
		return nil, err
	}
	chain, ok := d.a.bm.get(own)
	if !ok {
		return nil, newErr("directory", "", KindInvalidChainIndex, nil)
	}

	var out []DirEntry
	for i, e := range chain.Entries() {
		if e.IsEmpty() || e.Name == "." || e.Name == ".." {
			continue
		}
		if e.IsDir() {
			out = append(out, DirEntry{Name: e.Name, IsDir: true, dir: newDirectory(d.a, own, i, false)})
		} else {
			out = append(out, DirEntry{Name: e.Name, IsDir: false, file: newFile(d.a, own, i)})
		}
	}
	return out, nil
}
