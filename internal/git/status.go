package git

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WorkingChanges compares the tree at treeHash with the working directory
// and returns one RawChange per differing path, sorted by path. The new side
// carries the mode and blob id of the file on disk; a file missing from disk
// is a deletion. Untracked files are reported as additions only when
// includeUntracked is set.
//
// Candidate paths are those git status reports against HEAD plus those
// that differ between treeHash and HEAD, so any revision can be the base.
func (s *RepositoryStore) WorkingChanges(treeHash plumbing.Hash, includeUntracked bool) ([]RawChange, *WorktreeFS, error) {
	wt, err := s.repo.Worktree()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get git status: %w", err)
	}

	tree, err := s.tree(treeHash)
	if err != nil {
		return nil, nil, err
	}
	fs := NewWorktreeFSFrom(wt.Filesystem)

	candidates, err := s.headDelta(tree)
	if err != nil {
		return nil, nil, err
	}
	for path := range status {
		if status.IsUntracked(path) && !includeUntracked && findEntry(tree, path) == nil {
			continue
		}
		candidates[path] = struct{}{}
	}

	paths := make([]string, 0, len(candidates))
	for path := range candidates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	changes := make([]RawChange, 0, len(paths))
	for _, path := range paths {
		var c RawChange
		if entry := findEntry(tree, path); entry != nil {
			c.OldPath, c.OldMode, c.OldHash = path, entry.Mode, entry.Hash
		}

		hash, mode, err := fs.Hash(path)
		switch {
		case err == nil:
			c.NewPath, c.NewMode, c.NewHash = path, mode, hash
		case isNotExist(err):
		case errors.Is(err, ErrIsDirectory):
			// Submodule checkouts are not compared.
			continue
		default:
			return nil, nil, err
		}

		if c.OldPath == "" && c.NewPath == "" {
			continue
		}
		if c.OldPath != "" && c.NewPath != "" && c.OldHash == c.NewHash && c.OldMode == c.NewMode {
			continue
		}
		changes = append(changes, c)
	}

	filtered, err := s.filter.FilterChanges(changes)
	if err != nil {
		return nil, nil, err
	}
	return filtered, fs, nil
}

// headDelta returns the file paths that differ between tree and HEAD. An
// unborn HEAD compares against the empty tree.
func (s *RepositoryStore) headDelta(tree *object.Tree) (map[string]struct{}, error) {
	var head *object.Tree
	ref, err := s.repo.Head()
	switch {
	case err == nil:
		commit, err := s.repo.CommitObject(ref.Hash())
		if err != nil {
			return nil, storeError("commit", ref.Hash(), err)
		}
		if head, err = commit.Tree(); err != nil {
			return nil, storeError("tree", commit.TreeHash, err)
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
	default:
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	paths := make(map[string]struct{})
	if tree == nil && head == nil {
		return paths, nil
	}
	changes, err := object.DiffTree(tree, head)
	if err != nil {
		return nil, fmt.Errorf("failed to diff against HEAD: %w", err)
	}
	for _, c := range changes {
		if c.From.Name != "" {
			paths[c.From.Name] = struct{}{}
		}
		if c.To.Name != "" {
			paths[c.To.Name] = struct{}{}
		}
	}
	return paths, nil
}

func findEntry(tree *object.Tree, path string) *object.TreeEntry {
	if tree == nil {
		return nil
	}
	entry, err := tree.FindEntry(path)
	if err != nil || entry.Mode == filemode.Dir {
		return nil
	}
	return entry
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
