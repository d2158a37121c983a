package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVDiffWriter writes diff reports as CSV, one row per changed path.
type CSVDiffWriter struct{}

// Write outputs the diff report as CSV.
func (w *CSVDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		writer := csv.NewWriter(out)

		headers := []string{"Status", "OldPath", "NewPath", "OldMode", "NewMode", "OldSHA", "NewSHA",
			"Type", "Added", "Deleted"}
		if err := writer.Write(headers); err != nil {
			return err
		}

		for _, r := range limitTop(report.Records, options.Top) {
			added, deleted := diffStats(r.Text)
			row := []string{
				recordStatus(r),
				r.OldPath,
				r.NewPath,
				modeField(r.Old.Path, uint32(r.Old.Mode)),
				modeField(r.New.Path, uint32(r.New.Mode)),
				hashField(r.Old.Path, r.Old.Hash.String()),
				hashField(r.New.Path, r.New.Hash.String()),
				r.Kind.String(),
				strconv.Itoa(added),
				strconv.Itoa(deleted),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}

		writer.Flush()
		return writer.Error()
	})
}

// CSVCommitWriter writes commit summaries as CSV.
type CSVCommitWriter struct{}

// Write outputs the commit report as CSV.
func (w *CSVCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		writer := csv.NewWriter(out)

		headers := []string{"SHA", "When", "AuthorName", "AuthorEmail", "CommitterName", "CommitterEmail",
			"Summary", "Description"}
		if err := writer.Write(headers); err != nil {
			return err
		}

		for _, c := range limitTop(report.Commits, options.Top) {
			row := []string{
				c.SHA,
				commitTime(c.Time, c.Timezone).Format(reportDateTimeLayout + "Z07:00"),
				c.Author.Name,
				c.Author.Email,
				c.Committer.Name,
				c.Committer.Email,
				c.Summary,
				c.Description,
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}

		writer.Flush()
		return writer.Error()
	})
}

func modeField(path string, mode uint32) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%06o", mode)
}

func hashField(path, hash string) string {
	if path == "" {
		return ""
	}
	return hash
}
