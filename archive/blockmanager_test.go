package archive

import "testing"

func TestNewBlockManagerParsesRoot(t *testing.T) {
	m := newRootFixture()
	bm, err := newBlockManager(nil, m, int64(len(m.buf)), RootChainIndex, nil)
	if err != nil {
		t.Fatalf("newBlockManager: %v", err)
	}
	if _, ok := bm.get(RootChainIndex); !ok {
		t.Fatal("root chain missing from parsed index")
	}
}

func TestBlockManagerResolveChainIndex(t *testing.T) {
	m := newRootFixture()
	bm, err := newBlockManager(nil, m, int64(len(m.buf)), RootChainIndex, nil)
	if err != nil {
		t.Fatalf("newBlockManager: %v", err)
	}
	idx, err := bm.resolveChainIndex(RootChainIndex, []string{"."})
	if err != nil {
		t.Fatalf("resolveChainIndex: %v", err)
	}
	if idx != RootChainIndex {
		t.Errorf("resolveChainIndex(\".\") = %d, want %d", idx, RootChainIndex)
	}
}

func TestSplitPathRequiresLeadingSlash(t *testing.T) {
	if _, err := splitPath("no/leading/slash"); err == nil {
		t.Fatal("expected an error for a path missing its leading slash")
	}
	parts, err := splitPath("/a/b/c")
	if err != nil {
		t.Fatalf("splitPath: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(parts) != len(want) {
		t.Fatalf("splitPath(\"/a/b/c\") = %v, want %v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("parts[%d] = %q, want %q", i, parts[i], want[i])
		}
	}
}

func TestSplitPathRejectsEmptyComponent(t *testing.T) {
	if _, err := splitPath("/a//b"); err == nil {
		t.Fatal("expected an error for an empty path component")
	}
}

func TestValidateDirPathUntilStopsAtMissingComponent(t *testing.T) {
	m := newRootFixture()
	bm, err := newBlockManager(nil, m, int64(len(m.buf)), RootChainIndex, nil)
	if err != nil {
		t.Fatalf("newBlockManager: %v", err)
	}

	idx, remaining, err := bm.validateDirPathUntil(RootChainIndex, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("validateDirPathUntil: %v", err)
	}
	if idx != RootChainIndex {
		t.Errorf("stopped at chain %d, want root %d", idx, RootChainIndex)
	}
	if len(remaining) != 3 {
		t.Errorf("remaining = %v, want 3 components", remaining)
	}
}

func TestValidateDirPathUntilRejectsParentEscape(t *testing.T) {
	m := newRootFixture()
	bm, err := newBlockManager(nil, m, int64(len(m.buf)), RootChainIndex, nil)
	if err != nil {
		t.Fatalf("newBlockManager: %v", err)
	}
	if _, _, err := bm.validateDirPathUntil(RootChainIndex, []string{"missing", ".."}); err == nil {
		t.Fatal("expected an error walking \"..\" past an unresolved component")
	}
}
