package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/masmgr/treediff-go/config"
)

type cliRepo struct {
	t       *testing.T
	dir     string
	wt      *gogit.Worktree
	when    time.Time
	config  string
	commits []string
}

func newCLIRepo(t *testing.T) *cliRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	cfgPath := filepath.Join(t.TempDir(), "treediff.json")
	if err := config.SaveConfig(config.DefaultConfig(), cfgPath); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	return &cliRepo{t: t, dir: dir, wt: wt, when: time.Now().Add(-time.Hour), config: cfgPath}
}

func (r *cliRepo) write(rel, content string) {
	r.t.Helper()
	if err := os.WriteFile(filepath.Join(r.dir, rel), []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
}

func (r *cliRepo) commit(msg string, files map[string]string) string {
	r.t.Helper()
	for rel, content := range files {
		r.write(rel, content)
		if _, err := r.wt.Add(rel); err != nil {
			r.t.Fatalf("Add: %v", err)
		}
	}
	r.when = r.when.Add(time.Minute)
	sig := &object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: r.when}
	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	r.commits = append(r.commits, hash.String())
	return hash.String()
}

// run executes the app and returns what it printed to its writer.
func (r *cliRepo) run(args ...string) (string, error) {
	r.t.Helper()
	var buf bytes.Buffer
	app := App()
	app.Writer = &buf
	app.ErrWriter = &buf
	full := append([]string{"treediff", "--config", r.config}, args...)
	err := app.Run(full)
	return buf.String(), err
}

func sampleHistory(t *testing.T) *cliRepo {
	r := newCLIRepo(t)
	r.commit("Initial import\n", map[string]string{"a.txt": "foo\n"})
	r.commit("Update a, add logo\n\nThe logo is binary.\n", map[string]string{
		"a.txt":    "bar\n",
		"logo.bin": "\x00\x01\x02",
	})
	return r
}

type diffOutput struct {
	Base    string `json:"base"`
	Head    string `json:"head"`
	Records []struct {
		PathOld *string `json:"path_old"`
		PathNew *string `json:"path_new"`
		Type    string  `json:"type"`
		Status  string  `json:"status"`
		Diff    string  `json:"diff"`
	} `json:"records"`
}

func readDiffOutput(t *testing.T, path string) diffOutput {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var out diffOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, data)
	}
	return out
}

func TestDiffCmd_Range(t *testing.T) {
	r := sampleHistory(t)
	out := filepath.Join(t.TempDir(), "diff.json")

	if _, err := r.run("diff", "-r", r.dir, "-f", "json", "-o", out, r.commits[0]+".."+r.commits[1]); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := readDiffOutput(t, out)
	if len(got.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got.Records))
	}
	text, bin := got.Records[0], got.Records[1]
	if text.Type != "text" || *text.PathNew != "a.txt" || !strings.Contains(text.Diff, "+bar") {
		t.Errorf("text record = %+v", text)
	}
	if bin.Type != "binary" || bin.PathOld != nil || *bin.PathNew != "logo.bin" || bin.Diff != "" {
		t.Errorf("binary record = %+v", bin)
	}
}

func TestDiffCmd_SingleRootRevisionDiffsEmptyTree(t *testing.T) {
	r := sampleHistory(t)
	out := filepath.Join(t.TempDir(), "diff.json")

	if _, err := r.run("diff", "-r", r.dir, "-f", "json", "-o", out, r.commits[0]); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := readDiffOutput(t, out)
	if got.Base != "(empty tree)" {
		t.Errorf("Base = %q", got.Base)
	}
	if len(got.Records) != 1 || got.Records[0].Status != "added" || !strings.Contains(got.Records[0].Diff, "+foo") {
		t.Fatalf("records = %+v", got.Records)
	}
}

func TestDiffCmd_Working(t *testing.T) {
	r := sampleHistory(t)
	r.write("a.txt", "baz\n")
	out := filepath.Join(t.TempDir(), "diff.json")

	if _, err := r.run("diff", "-r", r.dir, "-w", "-f", "json", "-o", out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := readDiffOutput(t, out)
	if got.Head != workingTreeLabel {
		t.Errorf("Head = %q", got.Head)
	}
	if len(got.Records) != 1 || !strings.Contains(got.Records[0].Diff, "+baz") {
		t.Fatalf("records = %+v", got.Records)
	}
}

func TestDiffCmd_Classic(t *testing.T) {
	r := sampleHistory(t)

	printed, err := r.run("diff", "-r", r.dir, "--classic", r.commits[1])
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"diff --git a/a.txt b/a.txt", "-foo", "+bar", "Binary files /dev/null and b/logo.bin differ"} {
		if !strings.Contains(printed, want) {
			t.Errorf("classic output missing %q:\n%s", want, printed)
		}
	}
}

func TestDiffCmd_Exclude(t *testing.T) {
	r := sampleHistory(t)
	out := filepath.Join(t.TempDir(), "diff.json")

	if _, err := r.run("diff", "-r", r.dir, "--exclude", "*.bin", "-f", "json", "-o", out, r.commits[1]); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := readDiffOutput(t, out); len(got.Records) != 1 || *got.Records[0].PathNew != "a.txt" {
		t.Fatalf("records = %+v", got.Records)
	}
}

func TestDiffCmd_Errors(t *testing.T) {
	r := sampleHistory(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "InvalidRenameDetect", args: []string{"diff", "-r", r.dir, "--rename-detect", "bogus", r.commits[1]}},
		{name: "UnknownRevision", args: []string{"diff", "-r", r.dir, "nope..HEAD"}},
		{name: "WorkingWithRange", args: []string{"diff", "-r", r.dir, "-w", "HEAD~1..HEAD"}},
		{name: "TooManyArgs", args: []string{"diff", "-r", r.dir, "HEAD", "HEAD"}},
		{name: "NotARepo", args: []string{"diff", "-r", t.TempDir(), "HEAD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.run(tt.args...); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLogCmd(t *testing.T) {
	r := sampleHistory(t)
	out := filepath.Join(t.TempDir(), "log.json")

	if _, err := r.run("log", "-r", r.dir, "-f", "json", "-o", out); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got struct {
		Commits []struct {
			SHA         string `json:"sha"`
			Summary     string `json:"summary"`
			Description string `json:"description"`
		} `json:"commits"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(got.Commits))
	}
	if got.Commits[0].SHA != r.commits[1] || got.Commits[0].Summary != "Update a, add logo" || got.Commits[0].Description != "The logo is binary." {
		t.Errorf("newest commit = %+v", got.Commits[0])
	}
}

func TestShowCmd_Patch(t *testing.T) {
	r := sampleHistory(t)
	out := filepath.Join(t.TempDir(), "show.txt")

	printed, err := r.run("show", "-r", r.dir, "-o", out, "--patch", r.commits[1])
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Update a, add logo") {
		t.Errorf("summary missing from report:\n%s", data)
	}
	if !strings.Contains(printed, "+bar") {
		t.Errorf("patch missing from output:\n%s", printed)
	}
}

func TestLogCmd_Grep(t *testing.T) {
	r := sampleHistory(t)

	printed, err := r.run("log", "-r", r.dir, "--grep", "no such message")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(printed, "No commits found") {
		t.Errorf("output = %q", printed)
	}

	out := filepath.Join(t.TempDir(), "log.csv")
	if _, err := r.run("log", "-r", r.dir, "--grep", "^initial", "-f", "csv", "-o", out); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 2 || !strings.Contains(lines[1], r.commits[0]) {
		t.Errorf("csv = %q", data)
	}
}

func TestDiffCmd_WorkingAgainstOlderRevision(t *testing.T) {
	r := sampleHistory(t)
	out := filepath.Join(t.TempDir(), "diff.json")

	if _, err := r.run("diff", "-r", r.dir, "-w", "-f", "json", "-o", out, r.commits[0]); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := readDiffOutput(t, out)
	if got.Base != r.commits[0] || got.Head != workingTreeLabel {
		t.Errorf("range = %s..%s", got.Base, got.Head)
	}
	if len(got.Records) != 2 {
		t.Fatalf("expected 2 records, got %+v", got.Records)
	}
	text, bin := got.Records[0], got.Records[1]
	if text.Type != "text" || *text.PathNew != "a.txt" || !strings.Contains(text.Diff, "-foo") || !strings.Contains(text.Diff, "+bar") {
		t.Errorf("text record = %+v", text)
	}
	if bin.Type != "binary" || bin.Status != "added" || *bin.PathNew != "logo.bin" {
		t.Errorf("binary record = %+v", bin)
	}
}

func TestDiffCmd_GitBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping git CLI test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}

	r := sampleHistory(t)
	goGitOut := filepath.Join(t.TempDir(), "go-git.json")
	cliOut := filepath.Join(t.TempDir(), "git.json")

	if _, err := r.run("diff", "-r", r.dir, "-f", "json", "-o", goGitOut, r.commits[1]); err != nil {
		t.Fatalf("run go-git: %v", err)
	}
	if _, err := r.run("diff", "-r", r.dir, "--backend", "git", "-f", "json", "-o", cliOut, r.commits[1]); err != nil {
		t.Fatalf("run git: %v", err)
	}

	want, got := readDiffOutput(t, goGitOut), readDiffOutput(t, cliOut)
	if len(got.Records) != len(want.Records) {
		t.Fatalf("git backend gave %d records, go-git %d", len(got.Records), len(want.Records))
	}
	for i := range got.Records {
		if got.Records[i].Type != want.Records[i].Type || got.Records[i].Diff != want.Records[i].Diff {
			t.Errorf("record %d: git %+v, go-git %+v", i, got.Records[i], want.Records[i])
		}
	}
}
