package archive

import (
	"golang.org/x/crypto/blowfish"
)

// deriveBlowfishKey XORs the salt into a copy of the user key (truncated
// to 56 bytes), zero-padding the salt past its 10 bytes rather than
// repeating it, then initializes a variable-length Blowfish cipher from
// the result (§4.A).
func deriveBlowfishKey(key []byte) (*blowfish.Cipher, error) {
	keyLen := len(key)
	if keyLen > 56 {
		keyLen = 56
	}
	var base [56]byte
	copy(base[:], pk2Salt[:])

	derived := make([]byte, keyLen)
	for i := 0; i < keyLen; i++ {
		derived[i] = key[i] ^ base[i]
	}

	return blowfish.NewCipher(derived)
}

// verifyBlowfishKey encrypts the fixed checksum plaintext under cipher and
// compares the first keyCheckStoredBytes bytes against want.
func verifyBlowfishKey(cipher *blowfish.Cipher, want [keyCheckStoredBytes]byte) bool {
	got := encryptChecksum(cipher)
	return got == want
}

// encryptChecksum encrypts the fixed 8-byte checksum plaintext under
// cipher and returns the stored prefix of the result.
func encryptChecksum(cipher *blowfish.Cipher) [keyCheckStoredBytes]byte {
	var buf [8]byte
	copy(buf[:], pk2Checksum[:])
	var out [8]byte
	cipher.Encrypt(out[:], buf[:])
	// Blowfish.Encrypt operates on a single 8-byte block; that is exactly
	// the checksum's size, so one call suffices.
	var stored [keyCheckStoredBytes]byte
	copy(stored[:], out[:keyCheckStoredBytes])
	return stored
}

// cryptBlock encrypts or decrypts a block-sized buffer in place, ECB mode,
// 8 bytes at a time, leaving any trailing 0-7 bytes (not a multiple of the
// Blowfish block size) untouched. cipher == nil means the archive is
// unencrypted and this is a no-op.
func cryptBlock(cipher *blowfish.Cipher, buf []byte, encrypt bool) {
	if cipher == nil {
		return
	}
	n := len(buf) - len(buf)%blowfish.BlockSize
	for i := 0; i < n; i += blowfish.BlockSize {
		chunk := buf[i : i+blowfish.BlockSize]
		if encrypt {
			cipher.Encrypt(chunk, chunk)
		} else {
			cipher.Decrypt(chunk, chunk)
		}
	}
}
