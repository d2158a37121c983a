package treediff

import (
	"bytes"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Side is what a renderer sees of one side of a pair. Present is false for
// the null side of a creation or deletion.
type Side struct {
	Descriptor
	Data    []byte
	Present bool
}

func sideOf(ref ContentRef) Side {
	data, _ := ref.Content.Bytes()
	return Side{Descriptor: ref.Descriptor(), Data: data, Present: !ref.IsNull()}
}

// TextDiffRenderer produces the diff body for a text pair.
type TextDiffRenderer interface {
	Render(old, new Side) (string, error)
}

// UnifiedRenderer renders git-style unified diffs with go-git's encoder.
// A negative ContextLines uses git's default of three lines.
type UnifiedRenderer struct {
	ContextLines int
}

// Render implements TextDiffRenderer. A missing side renders as an
// all-added or all-removed diff; identical sides render as "".
func (r UnifiedRenderer) Render(old, new Side) (string, error) {
	if !old.Present && !new.Present {
		return "", nil
	}
	if old.Present && new.Present &&
		old.Path == new.Path && old.Mode == new.Mode && bytes.Equal(old.Data, new.Data) {
		return "", nil
	}

	fp := &filePatch{chunks: textChunks(string(old.Data), string(new.Data))}
	if old.Present {
		fp.from = patchFile(old.Descriptor)
	}
	if new.Present {
		fp.to = patchFile(new.Descriptor)
	}

	ctx := r.ContextLines
	if ctx < 0 {
		ctx = fdiff.DefaultContextLines
	}

	var sb strings.Builder
	if err := fdiff.NewUnifiedEncoder(&sb, ctx).Encode(patch{fp}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func textChunks(src, dst string) []fdiff.Chunk {
	diffs := diff.Do(src, dst)
	chunks := make([]fdiff.Chunk, 0, len(diffs))
	for _, d := range diffs {
		var op fdiff.Operation
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = fdiff.Equal
		case diffmatchpatch.DiffDelete:
			op = fdiff.Delete
		case diffmatchpatch.DiffInsert:
			op = fdiff.Add
		}
		chunks = append(chunks, textChunk{content: d.Text, op: op})
	}
	return chunks
}

// patch, filePatch, file and textChunk adapt a single pair to go-git's
// plumbing/format/diff interfaces.

type patch struct {
	fp *filePatch
}

func (p patch) FilePatches() []fdiff.FilePatch { return []fdiff.FilePatch{p.fp} }
func (p patch) Message() string { return "" }

type filePatch struct {
	from, to fdiff.File
	chunks   []fdiff.Chunk
}

func (p *filePatch) IsBinary() bool { return false }
func (p *filePatch) Files() (from, to fdiff.File) { return p.from, p.to }
func (p *filePatch) Chunks() []fdiff.Chunk { return p.chunks }

type file struct {
	path string
	mode filemode.FileMode
	hash plumbing.Hash
}

func patchFile(d Descriptor) fdiff.File {
	return file{path: d.Path, mode: d.Mode, hash: d.Hash}
}

func (f file) Hash() plumbing.Hash { return f.hash }
func (f file) Mode() filemode.FileMode { return f.mode }
func (f file) Path() string { return f.path }

type textChunk struct {
	content string
	op      fdiff.Operation
}

func (c textChunk) Content() string { return c.content }
func (c textChunk) Type() fdiff.Operation { return c.op }
