package git

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// RawChange is one path's transition between two trees, as produced by a
// tree diff. A side that does not exist (creation or deletion) has an empty
// path, an empty mode and a zero hash.
type RawChange struct {
	OldPath string
	NewPath string
	OldMode filemode.FileMode
	NewMode filemode.FileMode
	OldHash plumbing.Hash
	NewHash plumbing.Hash
}

// Kind derives the change kind from which sides are present.
func (c RawChange) Kind() ChangeKind {
	switch {
	case c.OldPath == "" && c.NewPath != "":
		return ChangeKindAdded
	case c.OldPath != "" && c.NewPath == "":
		return ChangeKindDeleted
	case c.OldPath != c.NewPath:
		return ChangeKindRenamed
	default:
		return ChangeKindModified
	}
}

// Path returns the path a reader would use to identify the change:
// the new path, or the old one for deletions.
func (c RawChange) Path() string {
	if c.NewPath != "" {
		return c.NewPath
	}
	return c.OldPath
}

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// RenameDetectMode controls how file renames are detected.
type RenameDetectMode int

const (
	RenameDetectOff RenameDetectMode = iota
	RenameDetectSimple
	RenameDetectAggressive
)

func (m RenameDetectMode) String() string {
	switch m {
	case RenameDetectOff:
		return "off"
	case RenameDetectSimple:
		return "simple"
	case RenameDetectAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// TreeChangeOptions configures how tree changes are computed.
type TreeChangeOptions struct {
	RenameDetect RenameDetectMode
	Include      []string // Glob patterns to include
	Exclude      []string // Glob patterns to exclude
}
