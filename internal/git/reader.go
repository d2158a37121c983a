package git

import (
	"context"
	"errors"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// LogOptions configures the history reader.
type LogOptions struct {
	Branch   string
	Since    *time.Time
	Until    *time.Time
	MaxCount int // 0 means unlimited
}

// HistoryReader reads commit history from a repository store.
type HistoryReader struct {
	store *RepositoryStore
	opts  LogOptions
}

// NewHistoryReader creates a new history reader over the given store.
func NewHistoryReader(store *RepositoryStore, opts LogOptions) *HistoryReader {
	return &HistoryReader{store: store, opts: opts}
}

// ReadCommits walks the history from the configured branch (HEAD when
// empty), newest first.
func (r *HistoryReader) ReadCommits(ctx context.Context) ([]*object.Commit, error) {
	repo := r.store.Repository()

	var from plumbing.Hash
	rev := strings.TrimSpace(r.opts.Branch)
	if rev == "" || strings.EqualFold(rev, "HEAD") {
		ref, err := repo.Head()
		if err != nil {
			return nil, err
		}
		from = ref.Hash()
	} else {
		commit, err := r.store.ResolveCommit(rev)
		if err != nil {
			return nil, err
		}
		from = commit.Hash
	}

	cIter, err := repo.Log(&gogit.LogOptions{From: from, Since: r.opts.Since, Until: r.opts.Until})
	if err != nil {
		return nil, err
	}
	defer cIter.Close()

	var results []*object.Commit
	err = cIter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		results = append(results, c)
		if r.opts.MaxCount > 0 && len(results) >= r.opts.MaxCount {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, err
	}

	return results, nil
}
