package treediff

import (
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/masmgr/treediff-go/internal/git"
)

// countingResolver records every call and delegates to inner.
type countingResolver struct {
	inner    Resolver
	opens    []string
	resolves []string
}

func (c *countingResolver) Open(ref ContentRef) (io.ReadCloser, error) {
	c.opens = append(c.opens, ref.Path)
	return c.inner.Open(ref)
}

func (c *countingResolver) Resolve(ref ContentRef) (ContentRef, error) {
	c.resolves = append(c.resolves, ref.Path)
	return c.inner.Resolve(ref)
}

// countingFS counts filesystem reads and opens.
type countingFS struct {
	inner git.Filesystem
	reads []string
	opens []string
}

func (c *countingFS) Read(path string) ([]byte, filemode.FileMode, error) {
	c.reads = append(c.reads, path)
	return c.inner.Read(path)
}

func (c *countingFS) Open(path string) (io.ReadCloser, error) {
	c.opens = append(c.opens, path)
	return c.inner.Open(path)
}

func modified(path string, oldHash, newHash plumbing.Hash) git.RawChange {
	return git.RawChange{
		OldPath: path, NewPath: path,
		OldMode: filemode.Regular, NewMode: filemode.Regular,
		OldHash: oldHash, NewHash: newHash,
	}
}

func added(path string, h plumbing.Hash) git.RawChange {
	return git.RawChange{NewPath: path, NewMode: filemode.Regular, NewHash: h}
}

func deleted(path string, h plumbing.Hash) git.RawChange {
	return git.RawChange{OldPath: path, OldMode: filemode.Regular, OldHash: h}
}

func storeRef(path string, h plumbing.Hash) ContentRef {
	return ContentRef{Path: path, Mode: filemode.Regular, Content: HashContent(h)}
}
