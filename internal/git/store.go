package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultBlobCacheSize = 256
	// Blobs larger than this are streamed from the object database every time.
	maxCachedBlobSize = 1 << 20
)

// StoreOptions configures a RepositoryStore.
type StoreOptions struct {
	TreeChangeOptions
	CacheSize int // Number of blobs kept in memory
}

// RepositoryStore exposes a go-git repository as an ObjectStore.
type RepositoryStore struct {
	repo   *gogit.Repository
	opts   StoreOptions
	filter *PathFilter
	blobs  *lru.Cache[plumbing.Hash, []byte]
}

// OpenRepositoryStore opens the repository at path, searching parent
// directories for the .git folder.
func OpenRepositoryStore(path string, opts StoreOptions) (*RepositoryStore, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return NewRepositoryStore(repo, opts)
}

// NewRepositoryStore wraps an already opened repository.
func NewRepositoryStore(repo *gogit.Repository, opts StoreOptions) (*RepositoryStore, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultBlobCacheSize
	}

	cache, err := lru.New[plumbing.Hash, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating blob cache: %w", err)
	}

	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	return &RepositoryStore{
		repo:   repo,
		opts:   opts,
		filter: filter,
		blobs:  cache,
	}, nil
}

// Repository returns the underlying go-git repository.
func (s *RepositoryStore) Repository() *gogit.Repository {
	return s.repo
}

// Blob returns the full blob content.
func (s *RepositoryStore) Blob(hash plumbing.Hash) ([]byte, error) {
	if data, ok := s.blobs.Get(hash); ok {
		return data, nil
	}

	rc, err := s.OpenBlob(hash)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}

	if len(data) <= maxCachedBlobSize {
		s.blobs.Add(hash, data)
	}
	return data, nil
}

// OpenBlob streams the blob content.
func (s *RepositoryStore) OpenBlob(hash plumbing.Hash) (io.ReadCloser, error) {
	if data, ok := s.blobs.Get(hash); ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, storeError("blob", hash, err)
	}
	return blob.Reader()
}

// HasBlob reports whether the blob exists in the object database.
func (s *RepositoryStore) HasBlob(hash plumbing.Hash) bool {
	if s.blobs.Contains(hash) {
		return true
	}
	_, err := s.repo.BlobObject(hash)
	return err == nil
}

// TreeChanges diffs two trees with go-git and flattens the result into
// RawChange tuples, applying the configured path filters.
func (s *RepositoryStore) TreeChanges(ctx context.Context, oldTree, newTree plumbing.Hash) ([]RawChange, error) {
	from, err := s.tree(oldTree)
	if err != nil {
		return nil, err
	}
	to, err := s.tree(newTree)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, diffTreeOptions(s.opts.RenameDetect))
	if err != nil {
		return nil, fmt.Errorf("diff tree: %w", err)
	}

	raw := make([]RawChange, 0, len(changes))
	for _, c := range changes {
		raw = append(raw, RawChange{
			OldPath: c.From.Name,
			NewPath: c.To.Name,
			OldMode: c.From.TreeEntry.Mode,
			NewMode: c.To.TreeEntry.Mode,
			OldHash: c.From.TreeEntry.Hash,
			NewHash: c.To.TreeEntry.Hash,
		})
	}

	return s.filter.FilterChanges(raw)
}

// ResolveTree resolves a revision (branch, tag, commit or tree hash) to the
// hash of its root tree.
func (s *RepositoryStore) ResolveTree(rev string) (plumbing.Hash, error) {
	commit, err := s.ResolveCommit(rev)
	if err == nil {
		return commit.TreeHash, nil
	}

	// Allow a bare tree hash as well.
	if plumbing.IsHash(rev) {
		tree, terr := s.repo.TreeObject(plumbing.NewHash(rev))
		if terr == nil {
			return tree.Hash, nil
		}
	}
	return plumbing.ZeroHash, err
}

// ResolveCommit resolves a revision to its commit object.
func (s *RepositoryStore) ResolveCommit(rev string) (*object.Commit, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	commit, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, storeError("commit", *hash, err)
	}
	return commit, nil
}

// MergeBase returns the best common ancestor of two commits.
func (s *RepositoryStore) MergeBase(a, b *object.Commit) (*object.Commit, error) {
	bases, err := a.MergeBase(b)
	if err != nil {
		return nil, fmt.Errorf("merge base of %s and %s: %w", a.Hash, b.Hash, err)
	}
	if len(bases) == 0 {
		return nil, fmt.Errorf("no merge base between %s and %s", a.Hash, b.Hash)
	}
	return bases[0], nil
}

func (s *RepositoryStore) tree(hash plumbing.Hash) (*object.Tree, error) {
	if hash.IsZero() {
		return nil, nil
	}
	tree, err := s.repo.TreeObject(hash)
	if err != nil {
		return nil, storeError("tree", hash, err)
	}
	return tree, nil
}

func diffTreeOptions(mode RenameDetectMode) *object.DiffTreeOptions {
	switch mode {
	case RenameDetectSimple:
		return &object.DiffTreeOptions{DetectRenames: true, OnlyExactRenames: true}
	case RenameDetectAggressive:
		// Same threshold git uses by default.
		return &object.DiffTreeOptions{DetectRenames: true, RenameScore: 60}
	default:
		return &object.DiffTreeOptions{}
	}
}

func storeError(kind string, hash plumbing.Hash, err error) error {
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return fmt.Errorf("%s %s: %w", kind, hash, ErrObjectNotFound)
	}
	return fmt.Errorf("%s %s: %w", kind, hash, err)
}
