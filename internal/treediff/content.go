// Package treediff turns raw tree changes into per-path diff records.
//
// The pipeline pairs the old and new side of every change, classifies each
// pair as text or binary by sniffing its content, resolves the content of
// text pairs from the object store or the working directory, and renders a
// unified diff. Binary pairs get a placeholder record and are never loaded.
package treediff

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// ContentKind tags what a ContentRef carries.
type ContentKind int

const (
	// ContentAbsent is the content of a null side.
	ContentAbsent ContentKind = iota
	// ContentHash refers to a blob in the object store.
	ContentHash
	// ContentBytes holds resolved file content.
	ContentBytes
)

// Content is one of: absent, a blob hash, or resolved bytes. The variant is
// fixed when the value is built.
type Content struct {
	kind ContentKind
	hash plumbing.Hash
	data []byte
}

// HashContent refers to a stored blob.
func HashContent(h plumbing.Hash) Content {
	return Content{kind: ContentHash, hash: h}
}

// BytesContent carries resolved content. Its hash is the git blob id of data.
func BytesContent(data []byte) Content {
	return Content{
		kind: ContentBytes,
		hash: plumbing.ComputeHash(plumbing.BlobObject, data),
		data: data,
	}
}

// Kind returns the variant.
func (c Content) Kind() ContentKind {
	return c.kind
}

// Hash returns the blob id for hash and bytes content, and the zero hash
// for absent content.
func (c Content) Hash() plumbing.Hash {
	return c.hash
}

// Bytes returns resolved content; ok is false unless the variant is ContentBytes.
func (c Content) Bytes() (data []byte, ok bool) {
	return c.data, c.kind == ContentBytes
}

// ContentRef is one side of a change at one path. The zero value is the
// null side of a creation or deletion.
type ContentRef struct {
	Path    string
	Mode    filemode.FileMode
	Content Content
}

// IsNull reports whether this is the missing side of a change.
func (r ContentRef) IsNull() bool {
	return r.Path == ""
}

// Descriptor identifies the side without its content.
func (r ContentRef) Descriptor() Descriptor {
	return Descriptor{Path: r.Path, Mode: r.Mode, Hash: r.Content.Hash()}
}

// ChangePair is one changed path across two snapshots.
type ChangePair struct {
	Old ContentRef
	New ContentRef
}

// Descriptor is the path, mode and content hash of one side of a record.
type Descriptor struct {
	Path string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// Kind is the diff strategy a record was produced with.
type Kind int

const (
	KindText Kind = iota
	KindBinary
)

// String returns the record type name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// DiffRecord is the diff of one changed path.
type DiffRecord struct {
	OldPath string
	NewPath string
	Old     Descriptor
	New     Descriptor
	Text    string
	Kind    Kind
}

// Path returns the new path, or the old one for deletions.
func (r DiffRecord) Path() string {
	if r.NewPath != "" {
		return r.NewPath
	}
	return r.OldPath
}
