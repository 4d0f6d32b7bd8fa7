package archive

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blowfish"
)

// fileHandle adapts *os.File to the narrow hostFile surface plus the
// current file length, which the block chain needs to know where an
// appended block or payload will land.
type fileHandle struct{ *os.File }

func (f fileHandle) fileSize() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Archive is the open façade over one PK2 host file (§4.E). It owns the
// host file handle, the derived Blowfish cipher (nil when unencrypted),
// the header, and the in-memory block-chain index built on open or
// create.
type Archive struct {
	path   string
	file   *os.File
	fh     fileHandle
	cipher *blowfish.Cipher
	header Header
	bm     *blockManager
	log    *logrus.Entry
}

// ID returns this archive's instance identifier, stamped into the header
// on Create.
func (a *Archive) ID() uuid.UUID { return a.header.ID }

// Encrypted reports whether the archive's index blocks are Blowfish
// encrypted.
func (a *Archive) Encrypted() bool { return a.header.Encrypted }

func (a *Archive) logf(format string, args ...interface{}) {
	if a.log != nil {
		a.log.Debugf(format, args...)
	}
}

// Open opens an existing archive at path, deriving and verifying the
// Blowfish key from key when the archive is encrypted, then parses the
// full block-chain index (§4.E).
func Open(path string, key []byte, opts ...Option) (*Archive, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, newErr("open", path, KindIO, err)
	}
	if err := lockHostFile(f); err != nil {
		f.Close()
		return nil, err
	}

	a := &Archive{path: path, file: f, fh: fileHandle{f}, log: defaultLogger.WithField("component", "pk2")}
	for _, opt := range opts {
		opt(a)
	}

	rawHeader := make([]byte, HeaderSize)
	if _, err := f.ReadAt(rawHeader, 0); err != nil {
		f.Close()
		return nil, newErr("open", path, KindIO, err)
	}
	header, err := headerFromBytes(rawHeader)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.header = header

	if header.Encrypted {
		cipher, err := deriveBlowfishKey(key)
		if err != nil {
			f.Close()
			return nil, newErr("open", path, KindIO, err)
		}
		if !verifyBlowfishKey(cipher, keyCheckBytes(header.Verify)) {
			f.Close()
			return nil, newErr("open", path, KindInvalidKey, nil)
		}
		a.cipher = cipher
	}

	size, err := a.fh.fileSize()
	if err != nil {
		f.Close()
		return nil, newErr("open", path, KindIO, err)
	}

	bm, err := newBlockManager(a.cipher, a.fh, size, RootChainIndex, a.logf)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.bm = bm
	a.logf("opened archive %s (encrypted=%v, id=%s)", path, header.Encrypted, header.ID)
	return a, nil
}

// Create creates a new archive at path. The archive is encrypted iff key
// is non-empty. A fresh root block is written whose entry[0] is a "."
// directory pointing at the root chain index and whose entry[1] is a ".."
// directory also pointing at the root, per the root-points-to-itself
// invariant (§3, §4.E).
func Create(path string, key []byte, opts ...Option) (*Archive, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, newErr("create", path, KindIO, err)
	}
	if err := lockHostFile(f); err != nil {
		f.Close()
		return nil, err
	}

	a := &Archive{path: path, file: f, fh: fileHandle{f}, log: defaultLogger.WithField("component", "pk2")}
	for _, opt := range opts {
		opt(a)
	}

	header := newHeader(len(key) > 0)
	if header.Encrypted {
		cipher, err := deriveBlowfishKey(key)
		if err != nil {
			f.Close()
			return nil, newErr("create", path, KindIO, err)
		}
		stored := encryptChecksum(cipher)
		copy(header.Verify[:], stored[:])
		a.cipher = cipher
	}
	a.header = header

	if _, err := f.WriteAt(header.toBytes(), 0); err != nil {
		f.Close()
		return nil, newErr("create", path, KindIO, err)
	}

	root := &block{offset: uint64(RootChainIndex)}
	root.entries[0] = newDirectoryEntry(".", RootChainIndex, 0)
	root.entries[1] = newDirectoryEntry("..", RootChainIndex, 0)
	if err := writeBlock(a.cipher, a.fh, root); err != nil {
		f.Close()
		return nil, err
	}

	bm, err := newBlockManager(a.cipher, a.fh, HeaderSize+BlockSize, RootChainIndex, a.logf)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.bm = bm
	a.logf("created archive %s (encrypted=%v, id=%s)", path, header.Encrypted, header.ID)
	return a, nil
}

// Close releases the advisory host-file lock and closes the underlying
// file. Once Close returns, the Archive and every handle borrowed from it
// must not be used.
func (a *Archive) Close() error {
	_ = unlockHostFile(a.file)
	return a.file.Close()
}

func (a *Archive) currentLength() (int64, error) {
	return a.fh.fileSize()
}

// OpenFile resolves path to a File entry and returns a read-only handle
// bound to its (parent chain, entry index) (§4.E).
func (a *Archive) OpenFile(path string) (*File, error) {
	chain, idx, entry, err := a.bm.resolveEntryAndParent(RootChainIndex, path)
	if err != nil {
		return nil, wrapOp("open_file", path, err)
	}
	if !entry.IsFile() {
		return nil, newErr("open_file", path, KindExpectedFile, nil)
	}
	return newFile(a, chain.ChainIndex(), idx), nil
}

// OpenFileMut is like OpenFile but returns a handle that also supports
// Write/Flush.
func (a *Archive) OpenFileMut(path string) (*FileMut, error) {
	chain, idx, entry, err := a.bm.resolveEntryAndParent(RootChainIndex, path)
	if err != nil {
		return nil, wrapOp("open_file_mut", path, err)
	}
	if !entry.IsFile() {
		return nil, newErr("open_file_mut", path, KindExpectedFile, nil)
	}
	return newFileMut(a, chain.ChainIndex(), idx), nil
}

// OpenDirectory resolves path to a Directory entry. The path "/" is a
// special case returning the root (§4.E).
func (a *Archive) OpenDirectory(path string) (*Directory, error) {
	if path == "/" {
		return newDirectory(a, RootChainIndex, 0, true), nil
	}
	chain, idx, entry, err := a.bm.resolveEntryAndParent(RootChainIndex, path)
	if err != nil {
		return nil, wrapOp("open_directory", path, err)
	}
	if !entry.IsDir() {
		return nil, newErr("open_directory", path, KindExpectedDirectory, nil)
	}
	return newDirectory(a, chain.ChainIndex(), idx, false), nil
}

// CreateFile resolves path's parent directory, creating any missing
// intermediate directories, and writes a fresh zero-length File entry at
// the target slot (§4.D, §4.E). Subsequent writes relocate the payload.
func (a *Archive) CreateFile(path string) (*FileMut, error) {
	components, err := splitPath(path)
	if err != nil {
		return nil, wrapOp("create_file", path, err)
	}
	if len(components) == 0 {
		return nil, newErr("create_file", path, KindInvalidPath, fmt.Errorf("cannot create the root"))
	}
	fileName := components[len(components)-1]

	chainIdx, entryIdx, err := a.createEntryAt(RootChainIndex, components)
	if err != nil {
		return nil, wrapOp("create_file", path, err)
	}

	chain, ok := a.bm.get(chainIdx)
	if !ok {
		return nil, newErr("create_file", path, KindInvalidChainIndex, nil)
	}
	slot := chain.GetMut(entryIdx)
	*slot = newFileEntry(fileName, 0, 0, slot.NextBlock)
	offset, _ := chain.FileOffsetForEntry(entryIdx)
	if err := writeEntryAt(a.cipher, a.fh, offset, slot); err != nil {
		return nil, err
	}
	a.logf("created file %s at chain=%d entry=%d", path, chainIdx, entryIdx)
	return newFileMut(a, chainIdx, entryIdx), nil
}

// DeleteFile requires path to name a File, then overwrites its entry with
// an Empty entry that preserves the existing next_block field so the
// chain is never severed. Payload bytes are not reclaimed (§4.E).
func (a *Archive) DeleteFile(path string) error {
	chain, idx, entry, err := a.bm.resolveEntryAndParent(RootChainIndex, path)
	if err != nil {
		return wrapOp("delete_file", path, err)
	}
	if !entry.IsFile() {
		return newErr("delete_file", path, KindExpectedFile, nil)
	}
	empty := newEmptyEntry(entry.NextBlock)
	*chain.GetMut(idx) = empty
	offset, _ := chain.FileOffsetForEntry(idx)
	if err := writeEntryAt(a.cipher, a.fh, offset, &empty); err != nil {
		return err
	}
	a.logf("deleted file %s", path)
	return nil
}

// createEntryAt walks as far as path already exists (§4.D
// validate_dir_path_until), then creates whatever directories and the
// final slot are still missing, returning the chain and entry index ready
// to be overwritten by the caller. Mirrors the original's create_entry_at:
// if the whole path already exists, this returns AlreadyExists.
func (a *Archive) createEntryAt(start ChainIndex, components []string) (ChainIndex, int, error) {
	currentChainIdx, remaining, err := a.bm.validateDirPathUntil(start, components)
	if err != nil {
		return 0, 0, err
	}

	for i, comp := range remaining {
		switch comp {
		case ".":
			continue
		case "..":
			chain, ok := a.bm.get(currentChainIdx)
			if !ok {
				return 0, 0, newErr("create", comp, KindInvalidChainIndex, nil)
			}
			parent, err := chain.FindBlockChainIndexOf("..")
			if err != nil {
				return 0, 0, newErr("create", comp, KindInvalidPath, nil)
			}
			currentChainIdx = parent
			continue
		}

		chain, ok := a.bm.get(currentChainIdx)
		if !ok {
			return 0, 0, newErr("create", comp, KindInvalidChainIndex, nil)
		}

		entryIdx := -1
		for idx, e := range chain.Entries() {
			if e.IsEmpty() {
				entryIdx = idx
				break
			}
		}
		if entryIdx == -1 {
			idx, err := chain.CreateNewBlock(a.cipher, a.fh)
			if err != nil {
				return 0, 0, err
			}
			entryIdx = idx
			a.logf("allocated new block for chain %d at entry %d", currentChainIdx, entryIdx)
		}

		last := i == len(remaining)-1
		if !last {
			newChainOffset, err := a.currentLength()
			if err != nil {
				return 0, 0, err
			}

			// Write the new chain's own block (with its "."/".." entries)
			// before the parent entry points at it, so a torn write never
			// leaves the parent referencing an offset that isn't a valid
			// block yet (§7).
			newBlock := &block{offset: uint64(newChainOffset)}
			newBlock.entries[0] = newDirectoryEntry(".", ChainIndex(newChainOffset), 0)
			newBlock.entries[1] = newDirectoryEntry("..", currentChainIdx, 0)
			if err := writeBlock(a.cipher, a.fh, newBlock); err != nil {
				return 0, 0, err
			}
			a.bm.insert(ChainIndex(newChainOffset), chainFromBlocks([]*block{newBlock}))

			slot := chain.GetMut(entryIdx)
			*slot = newDirectoryEntry(comp, ChainIndex(newChainOffset), slot.NextBlock)
			offset, _ := chain.FileOffsetForEntry(entryIdx)
			if err := writeEntryAt(a.cipher, a.fh, offset, slot); err != nil {
				return 0, 0, err
			}

			currentChainIdx = ChainIndex(newChainOffset)
			continue
		}
		return currentChainIdx, entryIdx, nil
	}
	return 0, 0, newErr("create", "", KindAlreadyExists, nil)
}

func wrapOp(op, path string, err error) error {
	if e, ok := err.(*Error); ok {
		return &Error{Kind: e.Kind, Op: op, Path: path, Err: e.Err}
	}
	return newErr(op, path, KindIO, err)
}

func keyCheckBytes(v [16]byte) [keyCheckStoredBytes]byte {
	var out [keyCheckStoredBytes]byte
	copy(out[:], v[:keyCheckStoredBytes])
	return out
}
