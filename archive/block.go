package archive

import "golang.org/x/crypto/blowfish"

// block is one 2560-byte PackBlock: a fixed array of EntriesPerBlock
// entries, recorded at an absolute file offset so its entries' own file
// offsets can be recomputed (§4.C).
type block struct {
	offset  uint64
	entries [EntriesPerBlock]Entry
}

// lastNextBlock returns the next_block link of the last entry of the
// block, scanning in reverse, that carries a non-zero next_block,
// regardless of variant. A tombstoned Empty entry still preserves a link
// it held before deletion (§9), so the scan must not stop at the first
// Empty entry it meets.
func (b *block) lastNextBlock() (uint64, bool) {
	for i := EntriesPerBlock - 1; i >= 0; i-- {
		if nb := b.entries[i].NextBlock; nb != 0 {
			return nb, true
		}
	}
	return 0, false
}

// Chain is an ordered list of one or more blocks forming one directory's
// entry table (PackBlockChain, §3, §4.C). Its identity is the offset of
// its first block.
type Chain struct {
	blocks []*block
}

// chainFromBlocks builds a Chain from an already-ordered block list.
func chainFromBlocks(blocks []*block) *Chain {
	return &Chain{blocks: blocks}
}

// ChainIndex returns this chain's identity: the absolute offset of its
// first block.
func (c *Chain) ChainIndex() ChainIndex {
	return ChainIndex(c.blocks[0].offset)
}

// Len returns the total number of entry slots across all blocks of the
// chain (always a multiple of EntriesPerBlock).
func (c *Chain) Len() int {
	return len(c.blocks) * EntriesPerBlock
}

// BlockCount returns how many blocks make up the chain.
func (c *Chain) BlockCount() int {
	return len(c.blocks)
}

// Get returns a copy of the entry at flattened index i across the chain's
// blocks.
func (c *Chain) Get(i int) (Entry, bool) {
	if i < 0 || i >= c.Len() {
		return Entry{}, false
	}
	return c.blocks[i/EntriesPerBlock].entries[i%EntriesPerBlock], true
}

// GetMut returns a pointer to the entry at flattened index i, letting the
// caller mutate it in place before it is rewritten to disk.
func (c *Chain) GetMut(i int) *Entry {
	if i < 0 || i >= c.Len() {
		return nil
	}
	return &c.blocks[i/EntriesPerBlock].entries[i%EntriesPerBlock]
}

// Entries returns a copy of every entry in the chain, concatenated in
// block order. Empty slots are included; callers filter as needed.
func (c *Chain) Entries() []Entry {
	out := make([]Entry, 0, c.Len())
	for _, blk := range c.blocks {
		out = append(out, blk.entries[:]...)
	}
	return out
}

// FileOffsetForEntry returns the absolute file offset of the entry at
// flattened index i: the offset of its containing block plus
// (i mod EntriesPerBlock) * EntrySize.
func (c *Chain) FileOffsetForEntry(i int) (uint64, bool) {
	if i < 0 || i >= c.Len() {
		return 0, false
	}
	blk := c.blocks[i/EntriesPerBlock]
	return blk.offset + uint64(i%EntriesPerBlock)*EntrySize, true
}

// FindBlockChainIndexOf scans the chain's entries for a name match (§4.C).
func (c *Chain) FindBlockChainIndexOf(name string) (ChainIndex, error) {
	for _, e := range c.Entries() {
		if e.IsEmpty() || e.Name != name {
			continue
		}
		if e.IsDir() {
			return e.PosChildren, nil
		}
		return 0, &Error{Kind: KindExpectedDirectory, Op: "resolve", Path: name}
	}
	return 0, &Error{Kind: KindNotFound, Op: "resolve", Path: name}
}

// CreateNewBlock appends a fresh all-Empty block to the end of the host
// file, links it by setting the next_block field of the current last
// block's last entry, rewrites that entry, writes the new block, and
// returns the flattened index of the new block's first entry (i.e. the
// chain's length before the append) (§4.C).
func (c *Chain) CreateNewBlock(cipher *blowfish.Cipher, f interface {
	hostFile
	fileSize() (int64, error)
}) (int, error) {
	newOffset, err := f.fileSize()
	if err != nil {
		return 0, newErr("create block", "", KindIO, err)
	}

	firstNewIndex := c.Len()
	lastBlock := c.blocks[len(c.blocks)-1]
	lastEntryIdx := EntriesPerBlock - 1
	lastEntry := &lastBlock.entries[lastEntryIdx]
	lastEntry.NextBlock = uint64(newOffset)
	lastEntryOffset := lastBlock.offset + uint64(lastEntryIdx)*EntrySize
	if err := writeEntryAt(cipher, f, lastEntryOffset, lastEntry); err != nil {
		return 0, err
	}

	newBlock := &block{offset: uint64(newOffset)}
	if err := writeBlock(cipher, f, newBlock); err != nil {
		return 0, err
	}
	c.blocks = append(c.blocks, newBlock)
	return firstNewIndex, nil
}
