package archive

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := newHeader(true)
	cipher, err := deriveBlowfishKey([]byte(DefaultKey))
	if err != nil {
		t.Fatalf("deriveBlowfishKey: %v", err)
	}
	stored := encryptChecksum(cipher)
	copy(h.Verify[:], stored[:])

	raw := h.toBytes()
	if len(raw) != HeaderSize {
		t.Fatalf("header is %d bytes, want %d", len(raw), HeaderSize)
	}

	got, err := headerFromBytes(raw)
	if err != nil {
		t.Fatalf("headerFromBytes: %v", err)
	}
	if got.Encrypted != h.Encrypted {
		t.Errorf("Encrypted = %v, want %v", got.Encrypted, h.Encrypted)
	}
	if got.Verify != h.Verify {
		t.Errorf("Verify = %v, want %v", got.Verify, h.Verify)
	}
	if got.ID != h.ID {
		t.Errorf("ID = %v, want %v", got.ID, h.ID)
	}
}

// TestHeaderSeedOffsets pins the two numeric seed scenarios that anchor the
// header's byte layout: the encryption flag at offset 37, and the
// key-check bytes at offset 40..43.
func TestHeaderSeedOffsets(t *testing.T) {
	h := newHeader(true)
	var verify [16]byte
	verify[0], verify[1], verify[2] = 0xAA, 0xBB, 0xCC
	h.Verify = verify

	raw := h.toBytes()
	if raw[37] != 1 {
		t.Errorf("encrypted flag at offset 37 = %d, want 1", raw[37])
	}
	if raw[40] != 0xAA || raw[41] != 0xBB || raw[42] != 0xCC {
		t.Errorf("key-check bytes at offset 40..43 = %v, want [AA BB CC]", raw[40:43])
	}
}

func TestHeaderRejectsBadSignature(t *testing.T) {
	raw := newHeader(false).toBytes()
	raw[0] = 'X'
	if _, err := headerFromBytes(raw); err == nil {
		t.Fatal("expected an error for a corrupted signature")
	}
}

func TestHeaderRejectsUnsupportedVersion(t *testing.T) {
	raw := newHeader(false).toBytes()
	raw[30] = 0
	raw[31] = 0
	raw[32] = 0
	raw[33] = 0
	if _, err := headerFromBytes(raw); err == nil {
		t.Fatal("expected an error for an unsupported version")
	}
}
