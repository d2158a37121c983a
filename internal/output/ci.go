package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/masmgr/treediff-go/internal/treediff"
)

// CIDiffWriter writes diff reports as NDJSON (one JSON object per line) for CI pipelines.
type CIDiffWriter struct{}

// CISummary is the first line of CI output, containing aggregate statistics.
type CISummary struct {
	Type          string `json:"type"`
	TotalChanges  int    `json:"totalChanges"`
	TextChanges   int    `json:"textChanges"`
	BinaryChanges int    `json:"binaryChanges"`
	LinesAdded    int    `json:"linesAdded"`
	LinesDeleted  int    `json:"linesDeleted"`
}

// CIChangeEntry represents a single changed path in CI output.
type CIChangeEntry struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	Path     string `json:"path"`
	OldPath  string `json:"oldPath,omitempty"`
	DiffType string `json:"diffType"`
	Added    int    `json:"added"`
	Deleted  int    `json:"deleted"`
}

// Write outputs the diff report as NDJSON.
func (w *CIDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	records := limitTop(report.Records, options.Top)

	return withOutput(options.OutputPath, func(out io.Writer) error {
		entries := make([]CIChangeEntry, len(records))
		summary := CISummary{Type: "summary", TotalChanges: len(records)}
		for i, r := range records {
			added, deleted := diffStats(r.Text)
			if r.Kind == treediff.KindBinary {
				summary.BinaryChanges++
			} else {
				summary.TextChanges++
			}
			summary.LinesAdded += added
			summary.LinesDeleted += deleted

			entry := CIChangeEntry{
				Type:     "change",
				Status:   recordStatus(r),
				Path:     r.Path(),
				DiffType: r.Kind.String(),
				Added:    added,
				Deleted:  deleted,
			}
			if r.OldPath != r.Path() {
				entry.OldPath = r.OldPath
			}
			entries[i] = entry
		}

		if err := writeNDJSONLine(out, summary); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := writeNDJSONLine(out, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
