package output

import (
	"os"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/masmgr/treediff-go/internal/summary"
	"github.com/masmgr/treediff-go/internal/treediff"
)

const sampleDiff = `diff --git a/a.txt b/a.txt
index 257cc5642cb1a054f08cc83f2d943e56fd3ebe99..5716ca5987cbf97d6bb54920bea6adde242d87e6 100644
--- a/a.txt
+++ b/a.txt
@@ -1 +1,2 @@
-foo
+bar
+baz
`

func testDescriptor(path, content string) treediff.Descriptor {
	return treediff.Descriptor{
		Path: path,
		Mode: filemode.Regular,
		Hash: plumbing.ComputeHash(plumbing.BlobObject, []byte(content)),
	}
}

func sampleDiffReport() *DiffReport {
	return &DiffReport{
		RepoPath:    "/test/repo",
		Base:        "main",
		Head:        "feature",
		GeneratedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Records: []treediff.DiffRecord{
			{
				OldPath: "a.txt", NewPath: "a.txt",
				Old: testDescriptor("a.txt", "foo\n"), New: testDescriptor("a.txt", "bar\nbaz\n"),
				Text: sampleDiff, Kind: treediff.KindText,
			},
			{
				NewPath: "logo.png",
				New:     testDescriptor("logo.png", "\x89PNG\x00"),
				Kind:    treediff.KindBinary,
			},
			{
				OldPath: "old_name.go", NewPath: "new_name.go",
				Old: testDescriptor("old_name.go", "x"), New: testDescriptor("new_name.go", "x"),
				Kind: treediff.KindText,
			},
		},
	}
}

func sampleCommitReport() *CommitReport {
	return &CommitReport{
		RepoPath:    "/test/repo",
		GeneratedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Commits: []summary.CommitRecord{
			summary.Summarize(summary.Commit{
				SHA:       "0123456789abcdef0123456789abcdef01234567",
				Author:    "A B <a@b.com>",
				Committer: "A B <a@b.com>",
				Time:      1700000000,
				Timezone:  -5 * 3600,
				Message:   "Fix bug\n\nDetails here\n",
			}),
			summary.Summarize(summary.Commit{
				SHA:       "89abcdef0123456789abcdef0123456789abcdef",
				Author:    "weirdname",
				Committer: "C <c@d.org>",
				Time:      1700003600,
				Message:   "Second | change",
			}),
		},
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(data)
}
