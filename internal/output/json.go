package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/masmgr/treediff-go/internal/summary"
	"github.com/masmgr/treediff-go/internal/treediff"
)

// JSONDiffWriter writes diff reports as JSON.
type JSONDiffWriter struct{}

// JSONDiffReport is the JSON output structure for a tree comparison.
type JSONDiffReport struct {
	RepoPath     string           `json:"repo"`
	Base         string           `json:"base"`
	Head         string           `json:"head"`
	GeneratedAt  string           `json:"generatedAt"`
	TotalChanges int              `json:"totalChanges"`
	Records      []JSONDiffRecord `json:"records"`
}

// JSONDiffRecord is the JSON form of one diff record. A missing side is null.
type JSONDiffRecord struct {
	PathOld *string         `json:"path_old"`
	PathNew *string         `json:"path_new"`
	Old     *JSONDescriptor `json:"old"`
	New     *JSONDescriptor `json:"new"`
	Diff    string          `json:"diff"`
	Type    string          `json:"type"`
	Status  string          `json:"status"`
	Added   int             `json:"added"`
	Deleted int             `json:"deleted"`
}

// JSONDescriptor identifies one side of a record.
type JSONDescriptor struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Hash string `json:"sha"`
}

// Write outputs the diff report as JSON.
func (w *JSONDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	records := limitTop(report.Records, options.Top)

	jsonRecords := make([]JSONDiffRecord, len(records))
	for i, r := range records {
		jsonRecords[i] = toJSONRecord(r, options.StatOnly)
	}

	jsonReport := JSONDiffReport{
		RepoPath:     report.RepoPath,
		Base:         report.Base,
		Head:         report.Head,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalChanges: len(report.Records),
		Records:      jsonRecords,
	}

	return writeJSON(jsonReport, options.OutputPath)
}

func toJSONRecord(r treediff.DiffRecord, statOnly bool) JSONDiffRecord {
	added, deleted := diffStats(r.Text)
	rec := JSONDiffRecord{
		PathOld: optionalString(r.OldPath),
		PathNew: optionalString(r.NewPath),
		Old:     toJSONDescriptor(r.Old),
		New:     toJSONDescriptor(r.New),
		Type:    r.Kind.String(),
		Status:  recordStatus(r),
		Added:   added,
		Deleted: deleted,
	}
	if !statOnly {
		rec.Diff = r.Text
	}
	return rec
}

func toJSONDescriptor(d treediff.Descriptor) *JSONDescriptor {
	if d.Path == "" {
		return nil
	}
	return &JSONDescriptor{
		Path: d.Path,
		Mode: fmt.Sprintf("%06o", uint32(d.Mode)),
		Hash: d.Hash.String(),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// JSONCommitWriter writes commit summaries as JSON.
type JSONCommitWriter struct{}

// JSONCommitReport is the JSON output structure for commit summaries.
type JSONCommitReport struct {
	RepoPath     string                 `json:"repo"`
	GeneratedAt  string                 `json:"generatedAt"`
	TotalCommits int                    `json:"totalCommits"`
	Commits      []summary.CommitRecord `json:"commits"`
}

// Write outputs the commit report as JSON.
func (w *JSONCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	commits := limitTop(report.Commits, options.Top)
	if commits == nil {
		commits = []summary.CommitRecord{}
	}
	return writeJSON(JSONCommitReport{
		RepoPath:     report.RepoPath,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalCommits: len(report.Commits),
		Commits:      commits,
	}, options.OutputPath)
}

func writeJSON(data interface{}, outputPath string) error {
	return withOutput(outputPath, func(out io.Writer) error {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	})
}
