package git

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// ErrIsDirectory is wrapped by FileAccessError when a path names a directory.
var ErrIsDirectory = errors.New("is a directory")

// WorktreeFS reads working-directory files through a billy filesystem.
type WorktreeFS struct {
	fs billy.Filesystem
}

// NewWorktreeFS creates a filesystem rooted at basePath on disk.
func NewWorktreeFS(basePath string) *WorktreeFS {
	return &WorktreeFS{fs: osfs.New(basePath)}
}

// NewWorktreeFSFrom wraps an existing billy filesystem (e.g. a go-git
// worktree's or an in-memory one).
func NewWorktreeFSFrom(fs billy.Filesystem) *WorktreeFS {
	return &WorktreeFS{fs: fs}
}

// Root returns the filesystem root.
func (w *WorktreeFS) Root() string {
	return w.fs.Root()
}

// Read returns the content and git mode of a file. A symlink yields its
// target, the way git stores links.
func (w *WorktreeFS) Read(path string) ([]byte, filemode.FileMode, error) {
	info, err := w.fs.Lstat(path)
	if err != nil {
		return nil, filemode.Empty, &FileAccessError{Path: path, Op: "stat", Err: err}
	}
	if info.IsDir() {
		return nil, filemode.Empty, &FileAccessError{Path: path, Op: "read", Err: ErrIsDirectory}
	}

	mode := modeFromFileInfo(info.Mode())
	if mode == filemode.Symlink {
		target, err := w.fs.Readlink(path)
		if err != nil {
			return nil, filemode.Empty, &FileAccessError{Path: path, Op: "readlink", Err: err}
		}
		return []byte(target), mode, nil
	}

	rc, err := w.open(path)
	if err != nil {
		return nil, filemode.Empty, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, filemode.Empty, &FileAccessError{Path: path, Op: "read", Err: err}
	}
	return data, mode, nil
}

// Hash returns the git blob id and mode of a file without holding its
// content in memory. Symlinks hash their target.
func (w *WorktreeFS) Hash(path string) (plumbing.Hash, filemode.FileMode, error) {
	info, err := w.fs.Lstat(path)
	if err != nil {
		return plumbing.ZeroHash, filemode.Empty, &FileAccessError{Path: path, Op: "stat", Err: err}
	}
	if info.IsDir() {
		return plumbing.ZeroHash, filemode.Empty, &FileAccessError{Path: path, Op: "hash", Err: ErrIsDirectory}
	}

	mode := modeFromFileInfo(info.Mode())
	if mode == filemode.Symlink {
		target, err := w.fs.Readlink(path)
		if err != nil {
			return plumbing.ZeroHash, filemode.Empty, &FileAccessError{Path: path, Op: "readlink", Err: err}
		}
		return plumbing.ComputeHash(plumbing.BlobObject, []byte(target)), mode, nil
	}

	rc, err := w.open(path)
	if err != nil {
		return plumbing.ZeroHash, filemode.Empty, err
	}
	defer rc.Close()

	h := plumbing.NewHasher(plumbing.BlobObject, info.Size())
	n, err := io.Copy(h, rc)
	if err != nil {
		return plumbing.ZeroHash, filemode.Empty, &FileAccessError{Path: path, Op: "hash", Err: err}
	}
	if n != info.Size() {
		return plumbing.ZeroHash, filemode.Empty, &FileAccessError{
			Path: path, Op: "hash",
			Err: fmt.Errorf("file changed while hashing: read %d of %d bytes", n, info.Size()),
		}
	}
	return h.Sum(), mode, nil
}

// Open streams a file's content. Symlinks are streamed as their target.
func (w *WorktreeFS) Open(path string) (io.ReadCloser, error) {
	info, err := w.fs.Lstat(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Op: "stat", Err: err}
	}
	if info.IsDir() {
		return nil, &FileAccessError{Path: path, Op: "open", Err: ErrIsDirectory}
	}
	if modeFromFileInfo(info.Mode()) == filemode.Symlink {
		data, _, err := w.Read(path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return w.open(path)
}

func (w *WorktreeFS) open(path string) (io.ReadCloser, error) {
	f, err := w.fs.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Op: "open", Err: err}
	}
	return f, nil
}
