package archive

import (
	"golang.org/x/crypto/blowfish"
)

// hostFile is the narrow surface this package needs from the open archive
// file: positioned reads and writes. *os.File satisfies it.
type hostFile interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
}

// readBlockAt reads, decrypts, and decodes the BlockSize-byte block at the
// given absolute offset (§4.C, §4.H).
func readBlockAt(cipher *blowfish.Cipher, f hostFile, offset uint64) (*block, error) {
	raw := make([]byte, BlockSize)
	if _, err := f.ReadAt(raw, int64(offset)); err != nil {
		return nil, newErr("read block", "", KindIO, err)
	}
	cryptBlock(cipher, raw, false)

	b := &block{offset: offset}
	for i := 0; i < EntriesPerBlock; i++ {
		e, err := decodeEntryBytes(raw[i*EntrySize : (i+1)*EntrySize])
		if err != nil {
			return nil, err
		}
		b.entries[i] = e
	}
	return b, nil
}

// writeBlock encrypts and writes a full BlockSize-byte block to disk at its
// own recorded offset.
func writeBlock(cipher *blowfish.Cipher, f hostFile, b *block) error {
	raw := make([]byte, BlockSize)
	for i := range b.entries {
		entryBytes, err := encodeEntryBytes(&b.entries[i])
		if err != nil {
			return err
		}
		copy(raw[i*EntrySize:(i+1)*EntrySize], entryBytes)
	}
	cryptBlock(cipher, raw, true)
	if _, err := f.WriteAt(raw, int64(b.offset)); err != nil {
		return newErr("write block", "", KindIO, err)
	}
	return nil
}

// writeEntryAt re-encodes and writes a single EntrySize-byte entry at an
// absolute file offset. Because Blowfish ECB operates independently on
// each 8-byte chunk and EntrySize is a multiple of 8, encrypting just this
// entry's bytes is equivalent to re-encrypting the whole containing block
// and leaves its neighboring entries untouched (§4.H).
func writeEntryAt(cipher *blowfish.Cipher, f hostFile, offset uint64, e *Entry) error {
	raw, err := encodeEntryBytes(e)
	if err != nil {
		return err
	}
	cryptBlock(cipher, raw, true)
	if _, err := f.WriteAt(raw, int64(offset)); err != nil {
		return newErr("write entry", "", KindIO, err)
	}
	return nil
}

// readEntryAt goes through the same decrypt path as readBlockAt but for a
// single entry-sized slice, the read-side counterpart of writeEntryAt.
func readEntryAt(cipher *blowfish.Cipher, f hostFile, offset uint64) (Entry, error) {
	raw := make([]byte, EntrySize)
	if _, err := f.ReadAt(raw, int64(offset)); err != nil {
		return Entry{}, newErr("read entry", "", KindIO, err)
	}
	cryptBlock(cipher, raw, false)
	return decodeEntryBytes(raw)
}
