package git

import (
	"context"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// ObjectStore is the read-only view of a content-addressed object database
// that the diff pipeline needs.
type ObjectStore interface {
	// Blob returns the full content of the blob. A missing hash yields an
	// error wrapping ErrObjectNotFound.
	Blob(hash plumbing.Hash) ([]byte, error)
	// OpenBlob streams the blob content; the caller closes the reader.
	OpenBlob(hash plumbing.Hash) (io.ReadCloser, error)
	// HasBlob reports whether the store holds the blob.
	HasBlob(hash plumbing.Hash) bool
	// TreeChanges lists the changes between two tree hashes. A zero hash
	// stands for the empty tree.
	TreeChanges(ctx context.Context, oldTree, newTree plumbing.Hash) ([]RawChange, error)
}

// Filesystem reads working-directory files relative to its root.
type Filesystem interface {
	Read(path string) ([]byte, filemode.FileMode, error)
	Open(path string) (io.ReadCloser, error)
}

// Compile-time interface conformance checks.
var (
	_ ObjectStore = (*RepositoryStore)(nil)
	_ ObjectStore = (*CLIStore)(nil)
	_ ObjectStore = (*MockObjectStore)(nil)
	_ Filesystem  = (*WorktreeFS)(nil)
)
