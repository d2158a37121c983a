package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// emptyTreeHash is the well-known id of the empty tree; git accepts it even
// when the object is not stored.
const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// CLIStore is a RepositoryStore whose tree changes come from the git binary
// (`git diff-tree --raw -z`) instead of go-git's merkletrie diff. Blob reads
// still go through go-git.
type CLIStore struct {
	*RepositoryStore
	repoPath string
}

// NewCLIStore wraps store, running git in repoPath.
func NewCLIStore(store *RepositoryStore, repoPath string) *CLIStore {
	return &CLIStore{RepositoryStore: store, repoPath: repoPath}
}

// TreeChanges runs git diff-tree between the two trees.
func (s *CLIStore) TreeChanges(ctx context.Context, oldTree, newTree plumbing.Hash) ([]RawChange, error) {
	changes, err := ReadTreeChangesGitCLI(ctx, s.repoPath, oldTree, newTree, s.opts.RenameDetect)
	if err != nil {
		return nil, err
	}
	return s.filter.FilterChanges(changes)
}

// ReadTreeChangesGitCLI lists the changes between two trees using git.
func ReadTreeChangesGitCLI(ctx context.Context, repoPath string, oldTree, newTree plumbing.Hash, rename RenameDetectMode) ([]RawChange, error) {
	args := []string{
		"-C", repoPath,
		"diff-tree",
		"-r",
		"--raw", "-z",
		"--no-abbrev",
	}

	switch rename {
	case RenameDetectOff:
		args = append(args, "--no-renames")
	case RenameDetectSimple:
		args = append(args, "-M100%")
	case RenameDetectAggressive:
		// Match go-git's default threshold (60).
		args = append(args, "-M60%")
	}

	args = append(args, treeArg(oldTree), treeArg(newTree))

	out, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff-tree failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return ParseRawChanges(out)
}

func treeArg(h plumbing.Hash) string {
	if h.IsZero() {
		return emptyTreeHash
	}
	return h.String()
}

// ParseRawChanges parses NUL-delimited `git diff-tree --raw -z` output.
// Format: ":SRCMODE DSTMODE SRCSHA DSTSHA STATUS\0PATH\0" with a second
// path for renames and copies.
func ParseRawChanges(body []byte) ([]RawChange, error) {
	i := 0
	for i < len(body) && (body[i] == '\n' || body[i] == '\r') {
		i++
	}

	changes := make([]RawChange, 0, 64)

	for i < len(body) {
		idx := len(changes)
		if body[i] != ':' {
			return nil, &InputShapeError{Index: idx, Reason: fmt.Sprintf("expected ':' at offset %d", i)}
		}

		meta, ok := readUntilNUL(body, &i)
		if !ok {
			return nil, &InputShapeError{Index: idx, Reason: "missing NUL after metadata"}
		}

		fields := strings.Fields(string(meta))
		if len(fields) != 5 {
			return nil, &InputShapeError{Index: idx, Reason: fmt.Sprintf("expected 5 metadata fields, got %d in %q", len(fields), string(meta))}
		}

		srcMode, err := parseGitFileMode(strings.TrimPrefix(fields[0], ":"))
		if err != nil {
			return nil, &InputShapeError{Index: idx, Reason: err.Error()}
		}
		dstMode, err := parseGitFileMode(fields[1])
		if err != nil {
			return nil, &InputShapeError{Index: idx, Reason: err.Error()}
		}
		if !plumbing.IsHash(fields[2]) || !plumbing.IsHash(fields[3]) {
			return nil, &InputShapeError{Index: idx, Reason: fmt.Sprintf("invalid object ids in %q", string(meta))}
		}
		srcHash := plumbing.NewHash(fields[2])
		dstHash := plumbing.NewHash(fields[3])
		status := fields[4]

		path1, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, &InputShapeError{Index: idx, Reason: "missing path"}
		}

		c := RawChange{
			OldPath: path1,
			NewPath: path1,
			OldMode: srcMode,
			NewMode: dstMode,
			OldHash: srcHash,
			NewHash: dstHash,
		}

		switch status[0] {
		case 'R', 'C':
			path2, ok := readStringUntilNUL(body, &i)
			if !ok {
				return nil, &InputShapeError{Index: idx, Reason: "missing rename path"}
			}
			c.NewPath = path2
		case 'A':
			c.OldPath, c.OldMode, c.OldHash = "", 0, plumbing.ZeroHash
		case 'D':
			c.NewPath, c.NewMode, c.NewHash = "", 0, plumbing.ZeroHash
		}

		changes = append(changes, c)

		for i < len(body) && (body[i] == '\n' || body[i] == '\r') {
			i++
		}
	}

	return changes, nil
}

func readUntilNUL(b []byte, i *int) ([]byte, bool) {
	if *i >= len(b) {
		return nil, false
	}
	j := bytes.IndexByte(b[*i:], 0)
	if j == -1 {
		return nil, false
	}
	start := *i
	end := *i + j
	*i = end + 1
	return b[start:end], true
}

func readStringUntilNUL(b []byte, i *int) (string, bool) {
	raw, ok := readUntilNUL(b, i)
	if !ok {
		return "", false
	}
	return string(raw), true
}
