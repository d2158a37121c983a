package output

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/masmgr/treediff-go/internal/git"
	"github.com/masmgr/treediff-go/internal/treediff"
)

const reportDateTimeLayout = "2006-01-02T15:04:05"

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

// diffStats counts added and deleted lines in a unified diff body.
// Header lines before the first hunk are not counted.
func diffStats(text string) (added, deleted int) {
	inHunk := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "@@") {
			inHunk = true
			continue
		}
		if !inHunk || line == "" {
			continue
		}
		switch line[0] {
		case '+':
			added++
		case '-':
			deleted++
		}
	}
	return added, deleted
}

// recordStatus labels a record by which sides exist. A record with neither
// side is a no-op and reads "unchanged".
func recordStatus(r treediff.DiffRecord) string {
	if r.OldPath == "" && r.NewPath == "" {
		return "unchanged"
	}
	return git.RawChange{OldPath: r.OldPath, NewPath: r.NewPath}.Kind().String()
}

func recordLabel(r treediff.DiffRecord) string {
	if r.OldPath != "" && r.NewPath != "" && r.OldPath != r.NewPath {
		return r.OldPath + " -> " + r.NewPath
	}
	return r.Path()
}

func rangeLabel(report *DiffReport) string {
	return report.Base + ".." + report.Head
}

func commitTime(unix int64, offset int) time.Time {
	return time.Unix(unix, 0).In(time.FixedZone("", offset))
}

// withOutput runs write against stdout or the file at outputPath. A ".gz"
// suffix wraps the file in a gzip stream. Close errors are reported.
func withOutput(outputPath string, write func(io.Writer) error) error {
	out, closeOut, err := openOutputWriter(outputPath)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func openOutputWriter(outputPath string) (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(outputPath, ".gz") {
		return file, file.Close, nil
	}

	zw := gzip.NewWriter(file)
	return zw, func() error {
		if err := zw.Close(); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}, nil
}
