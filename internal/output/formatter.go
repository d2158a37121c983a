package output

import (
	"time"

	"github.com/masmgr/treediff-go/internal/summary"
	"github.com/masmgr/treediff-go/internal/treediff"
)

// Compile-time interface conformance checks.
var (
	_ DiffReportWriter = (*ConsoleDiffWriter)(nil)
	_ DiffReportWriter = (*JSONDiffWriter)(nil)
	_ DiffReportWriter = (*CSVDiffWriter)(nil)
	_ DiffReportWriter = (*MarkdownDiffWriter)(nil)
	_ DiffReportWriter = (*CIDiffWriter)(nil)

	_ CommitReportWriter = (*ConsoleCommitWriter)(nil)
	_ CommitReportWriter = (*JSONCommitWriter)(nil)
	_ CommitReportWriter = (*CSVCommitWriter)(nil)
	_ CommitReportWriter = (*MarkdownCommitWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string // A ".gz" suffix compresses the output
	StatOnly   bool   // Omit diff bodies
}

// DiffReport holds the records of one tree comparison.
type DiffReport struct {
	RepoPath    string
	Base        string
	Head        string // "(working tree)" when diffing uncommitted files
	GeneratedAt time.Time
	Records     []treediff.DiffRecord
}

// CommitReport holds summarized commits.
type CommitReport struct {
	RepoPath    string
	GeneratedAt time.Time
	Commits     []summary.CommitRecord
}

// DiffReportWriter writes diff reports.
type DiffReportWriter interface {
	Write(report *DiffReport, options OutputOptions) error
}

// CommitReportWriter writes commit reports.
type CommitReportWriter interface {
	Write(report *CommitReport, options OutputOptions) error
}

// NewDiffReportWriter creates a diff report writer for the specified format.
func NewDiffReportWriter(format OutputFormat) DiffReportWriter {
	switch format {
	case FormatJSON:
		return &JSONDiffWriter{}
	case FormatCSV:
		return &CSVDiffWriter{}
	case FormatMarkdown:
		return &MarkdownDiffWriter{}
	case FormatCI:
		return &CIDiffWriter{}
	default:
		return &ConsoleDiffWriter{}
	}
}

// NewCommitReportWriter creates a commit report writer for the specified format.
func NewCommitReportWriter(format OutputFormat) CommitReportWriter {
	switch format {
	case FormatJSON:
		return &JSONCommitWriter{}
	case FormatCSV:
		return &CSVCommitWriter{}
	case FormatMarkdown:
		return &MarkdownCommitWriter{}
	default:
		return &ConsoleCommitWriter{}
	}
}
