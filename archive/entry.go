package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/silkroad-online/pk2/archive/internal/euckr"
)

// entryType is the one-byte tag distinguishing the three PackEntry variants.
type entryType uint8

const (
	entryTypeEmpty     entryType = 0
	entryTypeDirectory entryType = 1
	entryTypeFile      entryType = 2
)

// Entry is a decoded 128-byte PackEntry record (§3, §4.B). Exactly one of
// the Kind-specific fields is meaningful for a given Kind; callers use
// IsEmpty/IsDir/IsFile rather than checking fields directly.
type Entry struct {
	Kind entryType

	Name                               string
	AccessTime, CreateTime, ModifyTime FILETIME
	PosChildren                        ChainIndex // Directory only
	PosData                            uint64     // File only
	Size                               uint32     // File only
	NextBlock                          uint64     // 0 means none
}

// IsEmpty reports whether the entry is the Empty variant.
func (e *Entry) IsEmpty() bool { return e.Kind == entryTypeEmpty }

// IsDir reports whether the entry is the Directory variant.
func (e *Entry) IsDir() bool { return e.Kind == entryTypeDirectory }

// IsFile reports whether the entry is the File variant.
func (e *Entry) IsFile() bool { return e.Kind == entryTypeFile }

// HasNextBlock reports whether NextBlock is a real link rather than the
// "no next block" sentinel.
func (e *Entry) HasNextBlock() bool { return e.NextBlock != 0 }

// newEmptyEntry builds an Empty entry preserving the given next_block link,
// used by delete_file (§4.E) so a deletion never severs the chain.
func newEmptyEntry(nextBlock uint64) Entry {
	return Entry{Kind: entryTypeEmpty, NextBlock: nextBlock}
}

// newDirectoryEntry builds a Directory entry with the current time stamped
// into all three FILETIME fields.
func newDirectoryEntry(name string, posChildren ChainIndex, nextBlock uint64) Entry {
	now := NowFILETIME()
	return Entry{
		Kind:        entryTypeDirectory,
		Name:        name,
		AccessTime:  now,
		CreateTime:  now,
		ModifyTime:  now,
		PosChildren: posChildren,
		NextBlock:   nextBlock,
	}
}

// newFileEntry builds a File entry with the current time stamped into all
// three FILETIME fields.
func newFileEntry(name string, posData uint64, size uint32, nextBlock uint64) Entry {
	now := NowFILETIME()
	return Entry{
		Kind:       entryTypeFile,
		Name:       name,
		AccessTime: now,
		CreateTime: now,
		ModifyTime: now,
		PosData:    posData,
		Size:       size,
		NextBlock:  nextBlock,
	}
}

// decodeEntry reads exactly EntrySize bytes from r and decodes one
// PackEntry (§4.B). Any type byte other than 0, 1, or 2 is CorruptedFile.
func decodeEntry(r io.Reader) (Entry, error) {
	var raw [EntrySize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Entry{}, fmt.Errorf("read entry: %w", err)
	}
	return decodeEntryBytes(raw[:])
}

func decodeEntryBytes(raw []byte) (Entry, error) {
	if len(raw) != EntrySize {
		return Entry{}, fmt.Errorf("entry must be exactly %d bytes, got %d", EntrySize, len(raw))
	}
	switch entryType(raw[0]) {
	case entryTypeEmpty:
		// All fields but next_block are ignored for Empty, but the
		// original still preserves whatever next_block was last written
		// there so a deletion never severs the chain (§9).
		nextBlock := binary.LittleEndian.Uint64(raw[EntrySize-10 : EntrySize-2])
		return Entry{Kind: entryTypeEmpty, NextBlock: nextBlock}, nil
	case entryTypeDirectory, entryTypeFile:
		nameEnd := nameFieldSize
		for i, bb := range raw[1 : 1+nameFieldSize] {
			if bb == 0 {
				nameEnd = i
				break
			}
		}
		name := euckr.Decode(raw[1 : 1+nameEnd])

		off := 1 + nameFieldSize
		accessLow := binary.LittleEndian.Uint32(raw[off : off+4])
		accessHigh := binary.LittleEndian.Uint32(raw[off+4 : off+8])
		createLow := binary.LittleEndian.Uint32(raw[off+8 : off+12])
		createHigh := binary.LittleEndian.Uint32(raw[off+12 : off+16])
		modifyLow := binary.LittleEndian.Uint32(raw[off+16 : off+20])
		modifyHigh := binary.LittleEndian.Uint32(raw[off+20 : off+24])
		position := binary.LittleEndian.Uint64(raw[off+24 : off+32])
		size := binary.LittleEndian.Uint32(raw[off+32 : off+36])
		nextBlock := binary.LittleEndian.Uint64(raw[off+36 : off+44])
		// last 2 bytes are padding, ignored.

		e := Entry{
			Name:       name,
			AccessTime: FILETIME{Low: accessLow, High: accessHigh},
			CreateTime: FILETIME{Low: createLow, High: createHigh},
			ModifyTime: FILETIME{Low: modifyLow, High: modifyHigh},
			NextBlock:  nextBlock,
		}
		if raw[0] == byte(entryTypeDirectory) {
			e.Kind = entryTypeDirectory
			e.PosChildren = ChainIndex(position)
		} else {
			e.Kind = entryTypeFile
			e.PosData = position
			e.Size = size
		}
		return e, nil
	default:
		return Entry{}, newErr("decode", "", KindCorruptedFile, fmt.Errorf("entry type byte %d", raw[0]))
	}
}

// encodeEntry writes exactly EntrySize bytes representing e. Names that do
// not fit in nameFieldSize bytes once EUC-KR encoded are rejected.
func encodeEntry(w io.Writer, e *Entry) error {
	raw, err := encodeEntryBytes(e)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

func encodeEntryBytes(e *Entry) ([]byte, error) {
	raw := make([]byte, EntrySize)
	if e.IsEmpty() {
		binary.LittleEndian.PutUint64(raw[EntrySize-10:EntrySize-2], e.NextBlock)
		return raw, nil
	}

	raw[0] = byte(e.Kind)
	encodedName, err := euckr.Encode(e.Name)
	if err != nil || len(encodedName) > nameFieldSize {
		return nil, fmt.Errorf("name %q does not fit in %d bytes", e.Name, nameFieldSize)
	}
	copy(raw[1:1+nameFieldSize], encodedName)

	off := 1 + nameFieldSize
	binary.LittleEndian.PutUint32(raw[off:off+4], e.AccessTime.Low)
	binary.LittleEndian.PutUint32(raw[off+4:off+8], e.AccessTime.High)
	binary.LittleEndian.PutUint32(raw[off+8:off+12], e.CreateTime.Low)
	binary.LittleEndian.PutUint32(raw[off+12:off+16], e.CreateTime.High)
	binary.LittleEndian.PutUint32(raw[off+16:off+20], e.ModifyTime.Low)
	binary.LittleEndian.PutUint32(raw[off+20:off+24], e.ModifyTime.High)

	var position uint64
	var size uint32
	if e.IsDir() {
		position = uint64(e.PosChildren)
	} else {
		position = e.PosData
		size = e.Size
	}
	binary.LittleEndian.PutUint64(raw[off+24:off+32], position)
	binary.LittleEndian.PutUint32(raw[off+32:off+36], size)
	binary.LittleEndian.PutUint64(raw[off+36:off+44], e.NextBlock)
	// last 2 bytes are padding, left zero.

	return raw, nil
}

// clear turns e into an Empty entry preserving its next_block link (§4.E
// delete_file).
func (e *Entry) clear() {
	*e = newEmptyEntry(e.NextBlock)
}
