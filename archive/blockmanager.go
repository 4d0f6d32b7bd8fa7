package archive

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/crypto/blowfish"
)

// blockManager is the in-memory index of every block chain reachable from
// the root, keyed by ChainIndex (§4.D). Because ChainIndex is already a
// high-entropy file offset, Go's built-in map over the raw uint64 is used
// directly rather than hashing any richer representation — the spec calls
// this out as a correctness requirement, not just an optimization.
type blockManager struct {
	chains map[ChainIndex]*Chain
}

// newBlockManager parses the complete index of a pk2 file starting from
// root, bounding the per-chain block count at fileLen/BlockSize to reject
// a specially crafted next_block cycle (§4.D, §9).
func newBlockManager(cipher *blowfish.Cipher, f hostFile, fileLen int64, root ChainIndex, log logFn) (*blockManager, error) {
	maxBlocksPerChain := uint64(fileLen) / BlockSize
	if maxBlocksPerChain == 0 {
		maxBlocksPerChain = 1
	}

	chains := make(map[ChainIndex]*Chain)

	// ids assigns each distinct chain-start offset encountered a small
	// sequential id so a bitset can track "already queued" in place of a
	// second map, the way the ext4 allocator tracks free blocks/inodes
	// with a bitmap rather than a set of absolute block numbers.
	ids := make(map[uint64]uint)
	var nextID uint
	idFor := func(offset uint64) uint {
		if id, ok := ids[offset]; ok {
			return id
		}
		id := nextID
		nextID++
		ids[offset] = id
		return id
	}

	queued := bitset.New(64)
	worklist := []uint64{uint64(root)}
	queued.Set(idFor(uint64(root)))

	for len(worklist) > 0 {
		offset := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		chain, err := readChainFromFileAt(cipher, f, offset, maxBlocksPerChain)
		if err != nil {
			return nil, err
		}
		chains[ChainIndex(offset)] = chain

		for _, e := range chain.Entries() {
			if !e.IsDir() || e.Name == "." || e.Name == ".." {
				continue
			}
			child := uint64(e.PosChildren)
			id := idFor(child)
			if queued.Test(id) {
				continue
			}
			queued.Set(id)
			worklist = append(worklist, child)
		}
	}

	if log != nil {
		log("parsed %d block chains from %d", len(chains), root)
	}
	return &blockManager{chains: chains}, nil
}

type logFn func(format string, args ...interface{})

// readChainFromFileAt follows next_block links starting at offset until a
// block's entries, scanned from the end, carry no non-zero next_block,
// bounding the walk at maxBlocks to guard against a crafted cycle (§4.D).
func readChainFromFileAt(cipher *blowfish.Cipher, f hostFile, offset uint64, maxBlocks uint64) (*Chain, error) {
	var blocks []*block
	cur := offset
	for {
		if uint64(len(blocks)) >= maxBlocks {
			return nil, newErr("parse", "", KindCorruptedFile,
				fmt.Errorf("chain at offset %d exceeds %d blocks, likely a next_block cycle", offset, maxBlocks))
		}
		b, err := readBlockAt(cipher, f, cur)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
		next, ok := b.lastNextBlock()
		if !ok {
			break
		}
		cur = next
	}
	return chainFromBlocks(blocks), nil
}

func (m *blockManager) get(idx ChainIndex) (*Chain, bool) {
	c, ok := m.chains[idx]
	return c, ok
}

func (m *blockManager) insert(idx ChainIndex, c *Chain) {
	m.chains[idx] = c
}

// splitPath validates and splits a caller path into components. The
// leading slash is required and stripped; an otherwise empty path yields
// a zero-length, nil-error component slice representing the archive root
// (§4.D).
func splitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, newErr("resolve", path, KindInvalidPath, fmt.Errorf("path must start with /"))
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, "/")
	for _, p := range parts {
		if p == "" {
			return nil, newErr("resolve", path, KindInvalidPath, fmt.Errorf("empty path component"))
		}
	}
	return parts, nil
}

// resolveChainIndex folds path components into chain indices starting at
// start, failing fast on NotFound/ExpectedDirectory (§4.D resolve_chain).
func (m *blockManager) resolveChainIndex(start ChainIndex, components []string) (ChainIndex, error) {
	idx := start
	for _, comp := range components {
		chain, ok := m.get(idx)
		if !ok {
			return 0, newErr("resolve", comp, KindInvalidChainIndex, nil)
		}
		next, err := chain.FindBlockChainIndexOf(comp)
		if err != nil {
			return 0, err
		}
		idx = next
	}
	return idx, nil
}

// resolveEntryAndParent splits off the final path component, resolves the
// rest to a parent chain, then scans that chain's entries for a
// name-equal match (§4.D resolve_entry).
func (m *blockManager) resolveEntryAndParent(start ChainIndex, path string) (*Chain, int, Entry, error) {
	components, err := splitPath(path)
	if err != nil {
		return nil, 0, Entry{}, err
	}
	if len(components) == 0 {
		return nil, 0, Entry{}, newErr("resolve", path, KindInvalidPath, fmt.Errorf("no parent entry for the root"))
	}

	name := components[len(components)-1]
	parentIdx, err := m.resolveChainIndex(start, components[:len(components)-1])
	if err != nil {
		return nil, 0, Entry{}, err
	}
	parent, ok := m.get(parentIdx)
	if !ok {
		return nil, 0, Entry{}, newErr("resolve", path, KindInvalidChainIndex, nil)
	}
	for i, e := range parent.Entries() {
		if e.IsEmpty() || e.Name != name {
			continue
		}
		return parent, i, e, nil
	}
	return nil, 0, Entry{}, newErr("resolve", path, KindNotFound, nil)
}

// validateDirPathUntil walks components as far as they already exist,
// returning the deepest existing chain index and the remaining tail to be
// created. A ".." that would cross into a non-existent region is
// InvalidPath; a final component that already names a file is
// AlreadyExists (§4.D).
func (m *blockManager) validateDirPathUntil(start ChainIndex, components []string) (ChainIndex, []string, error) {
	idx := start
	n := 0
	for _, comp := range components {
		chain, ok := m.get(idx)
		if !ok {
			return 0, nil, newErr("create", comp, KindInvalidChainIndex, nil)
		}
		next, err := chain.FindBlockChainIndexOf(comp)
		if err == nil {
			idx = next
			n++
			continue
		}
		var aerr *Error
		if asError(err, &aerr) && aerr.Kind == KindNotFound {
			break
		}
		if asError(err, &aerr) && aerr.Kind == KindExpectedDirectory && n == len(components)-1 {
			return 0, nil, newErr("create", comp, KindAlreadyExists, nil)
		}
		return 0, nil, err
	}
	for _, comp := range components[n:] {
		if comp == ".." {
			return 0, nil, newErr("create", comp, KindInvalidPath, fmt.Errorf("%q escapes an existing parent", comp))
		}
	}
	return idx, components[n:], nil
}

func asError(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}
