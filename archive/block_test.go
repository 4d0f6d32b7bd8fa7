package archive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// memHostFile is an in-memory hostFile + fileSize() used across the
// archive package's tests in place of a real *os.File, the way the
// teacher's own tests build fixtures against small in-memory readers
// rather than scratch files on disk.
type memHostFile struct {
	buf []byte
}

func (m *memHostFile) ReadAt(p []byte, off int64) (int, error) {
	if int(off)+len(p) > len(m.buf) {
		return 0, &Error{Kind: KindIO, Op: "read"}
	}
	copy(p, m.buf[off:int(off)+len(p)])
	return len(p), nil
}

func (m *memHostFile) WriteAt(p []byte, off int64) (int, error) {
	need := int(off) + len(p)
	if need > len(m.buf) {
		grown := make([]byte, need)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:need], p)
	return len(p), nil
}

func (m *memHostFile) fileSize() (int64, error) {
	return int64(len(m.buf)), nil
}

func newRootFixture() *memHostFile {
	m := &memHostFile{buf: make([]byte, HeaderSize+BlockSize)}
	b := &block{offset: uint64(RootChainIndex)}
	b.entries[0] = newDirectoryEntry(".", RootChainIndex, 0)
	b.entries[1] = newDirectoryEntry("..", RootChainIndex, 0)
	if err := writeBlock(nil, m, b); err != nil {
		panic(err)
	}
	return m
}

func TestChainFileOffsetForEntry(t *testing.T) {
	m := newRootFixture()
	b, err := readBlockAt(nil, m, uint64(RootChainIndex))
	if err != nil {
		t.Fatalf("readBlockAt: %v", err)
	}
	c := chainFromBlocks([]*block{b})

	off, ok := c.FileOffsetForEntry(2)
	if !ok {
		t.Fatal("FileOffsetForEntry(2) reported not-ok")
	}
	want := uint64(RootChainIndex) + 2*EntrySize
	if off != want {
		t.Errorf("FileOffsetForEntry(2) = %d, want %d", off, want)
	}

	if _, ok := c.FileOffsetForEntry(-1); ok {
		t.Error("FileOffsetForEntry(-1) should report not-ok")
	}
	if _, ok := c.FileOffsetForEntry(c.Len()); ok {
		t.Error("FileOffsetForEntry(Len()) should report not-ok")
	}
}

func TestChainFindBlockChainIndexOf(t *testing.T) {
	m := newRootFixture()
	b, err := readBlockAt(nil, m, uint64(RootChainIndex))
	if err != nil {
		t.Fatalf("readBlockAt: %v", err)
	}
	c := chainFromBlocks([]*block{b})

	idx, err := c.FindBlockChainIndexOf(".")
	if err != nil {
		t.Fatalf("FindBlockChainIndexOf(\".\"): %v", err)
	}
	if idx != RootChainIndex {
		t.Errorf("\".\" resolved to %d, want %d", idx, RootChainIndex)
	}

	if _, err := c.FindBlockChainIndexOf("missing"); err == nil {
		t.Error("expected NotFound for a missing name")
	}
}

func TestChainCreateNewBlockLinksAndAppends(t *testing.T) {
	m := newRootFixture()
	b, err := readBlockAt(nil, m, uint64(RootChainIndex))
	if err != nil {
		t.Fatalf("readBlockAt: %v", err)
	}
	c := chainFromBlocks([]*block{b})

	firstNewIndex, err := c.CreateNewBlock(nil, m)
	if err != nil {
		t.Fatalf("CreateNewBlock: %v", err)
	}
	if firstNewIndex != EntriesPerBlock {
		t.Errorf("firstNewIndex = %d, want %d", firstNewIndex, EntriesPerBlock)
	}
	if c.BlockCount() != 2 {
		t.Fatalf("BlockCount() = %d, want 2", c.BlockCount())
	}

	lastEntry, _ := c.Get(EntriesPerBlock - 1)
	if lastEntry.NextBlock == 0 {
		t.Error("the old last entry should now link to the new block")
	}

	reread, err := readChainFromFileAt(nil, m, uint64(RootChainIndex), 8)
	if err != nil {
		t.Fatalf("readChainFromFileAt: %v", err)
	}
	if reread.BlockCount() != 2 {
		t.Errorf("re-read chain has %d blocks, want 2", reread.BlockCount())
	}
}

// TestChainRoundTripThroughDisk writes a chain with a mix of directory and
// file entries, reads it back with readChainFromFileAt (the chain reader
// the block manager's parse uses), and diffs the two entry slices. go-cmp is reached for here instead of
// go-test/deep because the comparison is over a plain []Entry rather than
// a single struct, where deep.Equal's output is less useful for spotting
// which flattened index regressed.
func TestChainRoundTripThroughDisk(t *testing.T) {
	m := newRootFixture()
	b, err := readBlockAt(nil, m, uint64(RootChainIndex))
	if err != nil {
		t.Fatalf("readBlockAt: %v", err)
	}
	c := chainFromBlocks([]*block{b})

	*c.GetMut(2) = newDirectoryEntry("Data", ChainIndex(999999), 0)
	*c.GetMut(3) = newFileEntry("Char.pk2", 1337, 4096, 0)
	for i := 2; i <= 3; i++ {
		offset, _ := c.FileOffsetForEntry(i)
		e := c.GetMut(i)
		if err := writeEntryAt(nil, m, offset, e); err != nil {
			t.Fatalf("writeEntryAt: %v", err)
		}
	}
	want := c.Entries()

	reread, err := readChainFromFileAt(nil, m, uint64(RootChainIndex), 4)
	if err != nil {
		t.Fatalf("readChainFromFileAt: %v", err)
	}
	got := reread.Entries()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("chain entries mismatch after a disk round trip (-want +got):\n%s", diff)
	}
}

func TestReadChainFromFileAtRejectsCycle(t *testing.T) {
	m := newRootFixture()
	b, err := readBlockAt(nil, m, uint64(RootChainIndex))
	if err != nil {
		t.Fatalf("readBlockAt: %v", err)
	}
	// Point the last entry's next_block back at the root itself, forming a
	// one-block cycle.
	b.entries[EntriesPerBlock-1] = newDirectoryEntry("loop", RootChainIndex, uint64(RootChainIndex))
	if err := writeBlock(nil, m, b); err != nil {
		t.Fatalf("writeBlock: %v", err)
	}

	if _, err := readChainFromFileAt(nil, m, uint64(RootChainIndex), 4); err == nil {
		t.Fatal("expected a cycle to be rejected once it exceeds maxBlocks")
	}
}
