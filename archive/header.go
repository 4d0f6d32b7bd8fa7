package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Header field offsets (§3, §4.G). See DESIGN.md for how these were
// reconciled against the two numeric seed scenarios in spec.md §8: the
// encryption flag at offset 37 and the key-check bytes at offset 40..43.
const (
	offSignature = 0  // 30 bytes
	offVersion   = 30 // 4 bytes, LE uint32
	// offsets 34..36 are a 3-byte pad
	offEncrypted = 37 // 1 byte
	// offsets 38..39 are a 2-byte pad, aligning Verify to offset 40
	offVerify = 40 // 16 bytes, first keyCheckStoredBytes meaningful
	offID     = 56 // 16 bytes, this module's archive-instance UUID
	// offsets 72..255 are reserved pad
)

// Header is the fixed 256-byte preamble of a PK2 archive (§3, §4.G).
type Header struct {
	Encrypted bool
	// Verify holds the 16-byte key-verification block; only the first
	// keyCheckStoredBytes are meaningful, the rest are zero.
	Verify [16]byte
	// ID is an archive-instance identifier stamped into the reserved pad
	// region on Create, surfaced via Archive.ID(). Not part of the
	// original format; this module's own addition, the way ext4 volumes
	// carry a UUID in their superblock.
	ID uuid.UUID
}

func newHeader(encrypted bool) Header {
	return Header{Encrypted: encrypted, ID: uuid.New()}
}

func headerFromBytes(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("header must be exactly %d bytes, got %d", HeaderSize, len(b))
	}
	var sig [30]byte
	copy(sig[:], b[offSignature:offSignature+30])
	if sig != pk2Signature {
		return Header{}, newErr("open", "", KindCorruptedFile, fmt.Errorf("bad signature %q", sig))
	}
	version := binary.LittleEndian.Uint32(b[offVersion : offVersion+4])
	if version != pk2Version {
		return Header{}, newErr("open", "", KindUnsupportedVersion, fmt.Errorf("version %#x", version))
	}
	encFlag := b[offEncrypted]
	if encFlag > 1 {
		return Header{}, newErr("open", "", KindCorruptedFile, fmt.Errorf("encryption flag %d", encFlag))
	}
	var h Header
	h.Encrypted = encFlag == 1
	copy(h.Verify[:], b[offVerify:offVerify+16])
	if id, err := uuid.FromBytes(b[offID : offID+16]); err == nil {
		h.ID = id
	}
	return h, nil
}

func (h Header) toBytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[offSignature:offSignature+30], pk2Signature[:])
	binary.LittleEndian.PutUint32(b[offVersion:offVersion+4], pk2Version)
	if h.Encrypted {
		b[offEncrypted] = 1
	}
	copy(b[offVerify:offVerify+16], h.Verify[:])
	if idBytes, err := h.ID.MarshalBinary(); err == nil {
		copy(b[offID:offID+16], idBytes)
	}
	return b
}
