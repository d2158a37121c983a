package treediff

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"pgregory.net/rapid"

	"github.com/masmgr/treediff-go/internal/git"
)

func TestReadability_IsReadable(t *testing.T) {
	store := git.NewMockObjectStore(nil, nil)
	text := store.AddBlob("hello\nworld\n")
	bin := store.AddBlob("PK\x03\x04\x00\x00binary")
	src := StoreResolver{Store: store}

	r, err := NewReadability(ReadabilityOptions{
		BinaryPatterns: []string{"**/*.lock"},
		TextPatterns:   []string{"docs/**"},
	})
	if err != nil {
		t.Fatalf("NewReadability: %v", err)
	}

	tests := []struct {
		name string
		ref  ContentRef
		want bool
	}{
		{name: "null side", ref: ContentRef{}, want: true},
		{name: "text blob", ref: storeRef("a.txt", text), want: true},
		{name: "binary blob", ref: storeRef("a.bin", bin), want: false},
		{name: "text bytes", ref: ContentRef{Path: "w.txt", Mode: filemode.Regular, Content: BytesContent([]byte("plain"))}, want: true},
		{name: "binary bytes", ref: ContentRef{Path: "w.bin", Mode: filemode.Regular, Content: BytesContent([]byte{0, 1, 2})}, want: false},
		{name: "submodule", ref: ContentRef{Path: "vendor/lib", Mode: filemode.Submodule, Content: HashContent(text)}, want: false},
		{name: "binary override", ref: storeRef("deps/go.lock", text), want: false},
		{name: "text override", ref: storeRef("docs/logo.bin", bin), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.IsReadable(tt.ref, src)
			if err != nil {
				t.Fatalf("IsReadable: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsReadable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadability_OverridesSkipContent(t *testing.T) {
	store := git.NewMockObjectStore(nil, nil)
	h := store.AddBlob("x")
	r, err := NewReadability(ReadabilityOptions{BinaryPatterns: []string{"*.png"}})
	if err != nil {
		t.Fatalf("NewReadability: %v", err)
	}

	if _, err := r.IsReadable(storeRef("logo.png", h), StoreResolver{Store: store}); err != nil {
		t.Fatalf("IsReadable: %v", err)
	}
	if store.Opens() != 0 {
		t.Errorf("override opened content %d times", store.Opens())
	}
}

func TestReadability_InvalidPattern(t *testing.T) {
	if _, err := NewReadability(ReadabilityOptions{TextPatterns: []string{"[unclosed"}}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestReadability_CachesVerdictByHash(t *testing.T) {
	store := git.NewMockObjectStore(nil, nil)
	h := store.AddBlob("same content\n")
	r, err := NewReadability(ReadabilityOptions{CacheSize: 8})
	if err != nil {
		t.Fatalf("NewReadability: %v", err)
	}
	src := StoreResolver{Store: store}

	for _, path := range []string{"a.txt", "b.txt", "c.txt"} {
		ok, err := r.IsReadable(storeRef(path, h), src)
		if err != nil || !ok {
			t.Fatalf("IsReadable(%s) = %v, %v", path, ok, err)
		}
	}
	if store.Opens() != 1 {
		t.Errorf("Opens = %d, want 1", store.Opens())
	}
}

func TestReadability_MissingBlob(t *testing.T) {
	store := git.NewMockObjectStore(nil, nil)
	missing := plumbing.ComputeHash(plumbing.BlobObject, []byte("nowhere"))

	_, err := DefaultReadability().IsReadable(storeRef("a.txt", missing), StoreResolver{Store: store})
	if !errors.Is(err, git.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

type failingOracle struct{}

func (failingOracle) LooksLikeText(io.Reader) (bool, error) {
	return false, errors.New("boom")
}

func TestReadability_OracleError(t *testing.T) {
	store := git.NewMockObjectStore(nil, nil)
	h := store.AddBlob("x")
	r, err := NewReadability(ReadabilityOptions{Oracle: failingOracle{}})
	if err != nil {
		t.Fatalf("NewReadability: %v", err)
	}
	if _, err := r.IsReadable(storeRef("a.txt", h), StoreResolver{Store: store}); err == nil {
		t.Fatal("expected oracle error")
	}
}

func TestClassifier_ClassifyPair(t *testing.T) {
	store := git.NewMockObjectStore(nil, nil)
	text := store.AddBlob("text\n")
	text2 := store.AddBlob("more text\n")
	bin := store.AddBlob("\x00\x01\x02")
	src := StoreResolver{Store: store}
	c := NewClassifier(nil, src, src)

	tests := []struct {
		name string
		pair ChangePair
		want Verdict
	}{
		{name: "both text", pair: ChangePair{Old: storeRef("a", text), New: storeRef("a", text2)}, want: Readable},
		{name: "added text", pair: ChangePair{New: storeRef("a", text)}, want: Readable},
		{name: "deleted binary", pair: ChangePair{Old: storeRef("a", bin)}, want: Unreadable},
		{name: "text to binary", pair: ChangePair{Old: storeRef("a", text), New: storeRef("a", bin)}, want: Unreadable},
		{name: "binary to text", pair: ChangePair{Old: storeRef("a", bin), New: storeRef("a", text)}, want: Unreadable},
		{name: "both null", pair: ChangePair{}, want: Readable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ClassifyPair(tt.pair)
			if err != nil {
				t.Fatalf("ClassifyPair: %v", err)
			}
			if got != tt.want {
				t.Errorf("ClassifyPair = %v, want %v", got, tt.want)
			}

			readable, _ := c.IsReadable(tt.pair)
			unreadable, _ := c.IsUnreadable(tt.pair)
			if readable == unreadable {
				t.Errorf("IsReadable = %v and IsUnreadable = %v", readable, unreadable)
			}
		})
	}
}

func TestClassifier_BinaryOldSideSkipsNewSide(t *testing.T) {
	store := git.NewMockObjectStore(nil, nil)
	bin := store.AddBlob("\x00")
	text := store.AddBlob("text")
	newSrc := &countingResolver{inner: StoreResolver{Store: store}}
	c := NewClassifier(nil, StoreResolver{Store: store}, newSrc)

	v, err := c.ClassifyPair(ChangePair{Old: storeRef("a", bin), New: storeRef("a", text)})
	if err != nil {
		t.Fatalf("ClassifyPair: %v", err)
	}
	if v != Unreadable {
		t.Fatalf("verdict = %v, want unreadable", v)
	}
	if len(newSrc.opens) != 0 {
		t.Errorf("new side opened: %v", newSrc.opens)
	}
}

type verdictJudge map[string]Verdict

func (j verdictJudge) ClassifyPair(p ChangePair) (Verdict, error) {
	return j[p.New.Path], nil
}

func TestRapidClassify_StablePartition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(t, "n")
		judge := verdictJudge{}
		pairs := make([]ChangePair, n)
		for i := range pairs {
			path := fmt.Sprintf("f%03d", i)
			pairs[i] = ChangePair{New: ContentRef{Path: path, Mode: filemode.Regular}}
			if rapid.Bool().Draw(t, fmt.Sprintf("binary%d", i)) {
				judge[path] = Unreadable
			} else {
				judge[path] = Readable
			}
		}

		readable, unreadable, err := Classify(pairs, judge)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if len(readable)+len(unreadable) != n {
			t.Fatalf("buckets hold %d pairs, want %d", len(readable)+len(unreadable), n)
		}

		// Each bucket is an ordered subsequence of the input.
		for _, bucket := range [][]ChangePair{readable, unreadable} {
			for i := 1; i < len(bucket); i++ {
				if bucket[i-1].New.Path >= bucket[i].New.Path {
					t.Fatalf("bucket out of order at %d: %q >= %q", i, bucket[i-1].New.Path, bucket[i].New.Path)
				}
			}
		}
		for _, p := range readable {
			if judge[p.New.Path] != Readable {
				t.Fatalf("%s in readable bucket", p.New.Path)
			}
		}
		for _, p := range unreadable {
			if judge[p.New.Path] != Unreadable {
				t.Fatalf("%s in unreadable bucket", p.New.Path)
			}
		}
	})
}
