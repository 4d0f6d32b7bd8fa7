package archive

import "testing"

func TestBlowfishKeyVerification(t *testing.T) {
	cipher, err := deriveBlowfishKey([]byte(DefaultKey))
	if err != nil {
		t.Fatalf("deriveBlowfishKey: %v", err)
	}
	stored := encryptChecksum(cipher)
	if !verifyBlowfishKey(cipher, stored) {
		t.Fatal("a key must verify against its own stored checksum")
	}

	other, err := deriveBlowfishKey([]byte("not the key"))
	if err != nil {
		t.Fatalf("deriveBlowfishKey: %v", err)
	}
	if verifyBlowfishKey(other, stored) {
		t.Fatal("a different key must not verify")
	}
}

func TestCryptBlockRoundTrip(t *testing.T) {
	cipher, err := deriveBlowfishKey([]byte(DefaultKey))
	if err != nil {
		t.Fatalf("deriveBlowfishKey: %v", err)
	}

	original := make([]byte, EntrySize)
	for i := range original {
		original[i] = byte(i)
	}

	buf := append([]byte(nil), original...)
	cryptBlock(cipher, buf, true)
	if string(buf) == string(original) {
		t.Fatal("encryption did not change the buffer")
	}
	cryptBlock(cipher, buf, false)
	if string(buf) != string(original) {
		t.Fatal("decrypting the encrypted buffer did not recover the original")
	}
}

func TestCryptBlockNilCipherIsNoop(t *testing.T) {
	buf := []byte("unencrypted archive payload bytes")
	original := append([]byte(nil), buf...)
	cryptBlock(nil, buf, true)
	if string(buf) != string(original) {
		t.Fatal("a nil cipher must leave the buffer untouched")
	}
}
