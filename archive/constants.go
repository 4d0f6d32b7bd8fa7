package archive

// Fixed layout constants from the PK2 on-disk format. All multi-byte
// integers on disk are little-endian.
const (
	// HeaderSize is the fixed size in bytes of PackHeader.
	HeaderSize = 256
	// RootChainIndex is the absolute offset of the root directory's first
	// block: immediately after the header.
	RootChainIndex ChainIndex = HeaderSize
	// BlockSize is the fixed size in bytes of one PackBlock.
	BlockSize = EntriesPerBlock * EntrySize
	// EntriesPerBlock is the fixed entry count of one PackBlock.
	EntriesPerBlock = 20
	// EntrySize is the fixed on-disk size in bytes of one PackEntry.
	EntrySize = 128
	// nameFieldSize is the fixed size of the EUC-KR encoded name field
	// within a non-empty entry.
	nameFieldSize = 81

	// DefaultKey is used when the caller supplies no key.
	DefaultKey = "169841"

	// pk2Version is the fixed 4-byte little-endian header version.
	pk2Version uint32 = 0x01000002

	// keyCheckStoredBytes is how many bytes of the encrypted checksum are
	// stored in, and compared against, the header's verify field.
	keyCheckStoredBytes = 3
)

// pk2Signature is the fixed 30-byte signature stored at header offset 0.
var pk2Signature = [30]byte{
	'J', 'o', 'y', 'M', 'a', 'x', ' ', 'F', 'i', 'l', 'e', ' ',
	'M', 'a', 'n', 'a', 'g', 'e', 'r', '!', '\n',
	// remaining bytes are zero-padded
}

// pk2Salt is XORed into the user-supplied key before Blowfish key
// scheduling (§4.A).
var pk2Salt = [10]byte{0x03, 0xF8, 0xE4, 0x44, 0x88, 0x99, 0x3F, 0x64, 0xFE, 0x35}

// pk2Checksum is the fixed plaintext encrypted under the derived key to
// produce the header's key-verification bytes.
var pk2Checksum = [8]byte{0xB7, 0xB7, 0xB7, 0xB7, 0xB7, 0xB7, 0xB7, 0xB7}

// ChainIndex identifies a block chain by the absolute file offset of its
// first block. It doubles as the key type for the block manager's chain
// map, which must be hashed as a raw uint64 and never by any other
// representation.
type ChainIndex uint64
