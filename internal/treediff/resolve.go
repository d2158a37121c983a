package treediff

import (
	"bytes"
	"io"

	"github.com/masmgr/treediff-go/internal/git"
)

// Resolver turns a ContentRef into content. Open streams it for sniffing;
// Resolve loads it fully for diffing.
type Resolver interface {
	Open(ref ContentRef) (io.ReadCloser, error)
	Resolve(ref ContentRef) (ContentRef, error)
}

// StoreResolver reads content from the object store by hash.
type StoreResolver struct {
	Store git.ObjectStore
}

// Open streams the blob behind ref.
func (r StoreResolver) Open(ref ContentRef) (io.ReadCloser, error) {
	if data, ok := ref.Content.Bytes(); ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	if ref.IsNull() {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return r.Store.OpenBlob(ref.Content.Hash())
}

// Resolve loads the blob. Null and already resolved refs pass through.
// A hash missing from the store fails with an error wrapping
// git.ErrObjectNotFound.
func (r StoreResolver) Resolve(ref ContentRef) (ContentRef, error) {
	if ref.IsNull() || ref.Content.Kind() == ContentBytes {
		return ref, nil
	}
	data, err := r.Store.Blob(ref.Content.Hash())
	if err != nil {
		return ContentRef{}, err
	}
	ref.Content = Content{kind: ContentBytes, hash: ref.Content.Hash(), data: data}
	return ref, nil
}

// WorkingResolver reads content from the working directory by path.
type WorkingResolver struct {
	FS git.Filesystem
}

// Open streams the file at ref.Path.
func (r WorkingResolver) Open(ref ContentRef) (io.ReadCloser, error) {
	if data, ok := ref.Content.Bytes(); ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	if ref.IsNull() {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return r.FS.Open(ref.Path)
}

// Resolve reads the file's bytes and mode. Failures are *git.FileAccessError.
func (r WorkingResolver) Resolve(ref ContentRef) (ContentRef, error) {
	if ref.IsNull() || ref.Content.Kind() == ContentBytes {
		return ref, nil
	}
	data, mode, err := r.FS.Read(ref.Path)
	if err != nil {
		return ContentRef{}, err
	}
	return ContentRef{Path: ref.Path, Mode: mode, Content: BytesContent(data)}, nil
}
