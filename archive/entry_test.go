package archive

import (
	"testing"

	"github.com/go-test/deep"
)

func TestEntryCodecRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		e    Entry
	}{
		{"empty", newEmptyEntry(0)},
		{"empty with next_block", newEmptyEntry(4096)},
		{"directory", newDirectoryEntry("Data", ChainIndex(2816), 0)},
		{"file", newFileEntry("Char.pk2", 1337, 4096, 0)},
		{"korean name", newFileEntry("몬스터.txt", 0, 0, 0)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw, err := encodeEntryBytes(&c.e)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if len(raw) != EntrySize {
				t.Fatalf("encoded entry is %d bytes, want %d", len(raw), EntrySize)
			}
			got, err := decodeEntryBytes(raw)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := deep.Equal(got, c.e); diff != nil {
				t.Errorf("round trip mismatch: %v", diff)
			}
		})
	}
}

func TestEntryCodecRejectsOversizedName(t *testing.T) {
	long := make([]rune, 100)
	for i := range long {
		long[i] = 'a'
	}
	e := newFileEntry(string(long), 0, 0, 0)
	if _, err := encodeEntryBytes(&e); err == nil {
		t.Fatal("expected an error encoding an oversized name")
	}
}

func TestEntryCodecRejectsBadTypeByte(t *testing.T) {
	raw := make([]byte, EntrySize)
	raw[0] = 0x7F
	if _, err := decodeEntryBytes(raw); err == nil {
		t.Fatal("expected an error decoding an unknown entry type byte")
	}
}

func TestEmptyEntryPreservesNextBlock(t *testing.T) {
	e := newFileEntry("x.txt", 0, 0, 9000)
	e.clear()
	if !e.IsEmpty() {
		t.Fatal("clear() did not produce an Empty entry")
	}
	if e.NextBlock != 9000 {
		t.Fatalf("clear() dropped next_block: got %d, want 9000", e.NextBlock)
	}

	raw, err := encodeEntryBytes(&e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := decodeEntryBytes(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.NextBlock != 9000 {
		t.Fatalf("next_block did not survive an Empty entry round trip: got %d", back.NextBlock)
	}
}
