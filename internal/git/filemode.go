package git

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// parseGitFileMode parses an octal file mode string (e.g. "100644", "120000", "000000").
func parseGitFileMode(s string) (filemode.FileMode, error) {
	if s == "" {
		return filemode.Empty, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return filemode.Empty, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	return filemode.FileMode(v), nil
}

// modeFromFileInfo maps an OS file mode onto the git modes a tree can hold.
// Anything that is not a symlink or an executable is a regular file.
func modeFromFileInfo(m os.FileMode) filemode.FileMode {
	switch {
	case m&os.ModeSymlink != 0:
		return filemode.Symlink
	case m&0o111 != 0:
		return filemode.Executable
	default:
		return filemode.Regular
	}
}
