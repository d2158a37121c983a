package treediff

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/utils/binary"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ReadabilityOracle decides whether content can be diffed line by line.
type ReadabilityOracle interface {
	LooksLikeText(r io.Reader) (bool, error)
}

// SniffOracle applies git's heuristic: content with a NUL byte in its first
// 8000 bytes is binary.
type SniffOracle struct{}

// LooksLikeText implements ReadabilityOracle.
func (SniffOracle) LooksLikeText(r io.Reader) (bool, error) {
	isBinary, err := binary.IsBinary(r)
	if err != nil {
		return false, err
	}
	return !isBinary, nil
}

// ReadabilityOptions configures a Readability.
type ReadabilityOptions struct {
	Oracle         ReadabilityOracle
	BinaryPatterns []string // Paths always treated as binary
	TextPatterns   []string // Paths always treated as text
	CacheSize      int      // Verdicts remembered per blob hash; 0 disables
}

// Readability judges whether one side of a change is text.
type Readability struct {
	oracle ReadabilityOracle
	binary []string
	text   []string
	cache  *lru.Cache[plumbing.Hash, bool]
}

// NewReadability builds a Readability. A nil oracle means SniffOracle.
func NewReadability(opts ReadabilityOptions) (*Readability, error) {
	for _, p := range append(append([]string{}, opts.BinaryPatterns...), opts.TextPatterns...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid readability pattern %q", p)
		}
	}

	r := &Readability{
		oracle: opts.Oracle,
		binary: opts.BinaryPatterns,
		text:   opts.TextPatterns,
	}
	if r.oracle == nil {
		r.oracle = SniffOracle{}
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[plumbing.Hash, bool](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating verdict cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// DefaultReadability sniffs content and has no path overrides.
func DefaultReadability() *Readability {
	return &Readability{oracle: SniffOracle{}}
}

// IsReadable reports whether ref is text. A null side is vacuously readable.
// Gitlinks have no content in this repository and are never readable.
// Path overrides are consulted before any content is opened.
func (r *Readability) IsReadable(ref ContentRef, src Resolver) (bool, error) {
	if ref.IsNull() {
		return true, nil
	}
	if ref.Mode == filemode.Submodule || ref.Mode == filemode.Dir {
		return false, nil
	}

	path := strings.ReplaceAll(ref.Path, "\\", "/")
	if matchAny(r.text, path) {
		return true, nil
	}
	if matchAny(r.binary, path) {
		return false, nil
	}

	if data, ok := ref.Content.Bytes(); ok {
		return r.oracle.LooksLikeText(bytes.NewReader(data))
	}

	cacheable := r.cache != nil && ref.Content.Kind() == ContentHash && !ref.Content.Hash().IsZero()
	if cacheable {
		if v, ok := r.cache.Get(ref.Content.Hash()); ok {
			return v, nil
		}
	}

	rc, err := src.Open(ref)
	if err != nil {
		return false, err
	}
	defer rc.Close()

	v, err := r.oracle.LooksLikeText(rc)
	if err != nil {
		return false, fmt.Errorf("sniff %s: %w", ref.Path, err)
	}

	if cacheable {
		r.cache.Add(ref.Content.Hash(), v)
	}
	return v, nil
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
