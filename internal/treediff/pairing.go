package treediff

import (
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/masmgr/treediff-go/internal/git"
)

// ToPairs reshapes raw tree changes into old/new pairs, one per change and
// in the same order. A side that has a mode or hash but no path breaks the
// null-side invariant and fails with *git.InputShapeError.
func ToPairs(changes []git.RawChange) ([]ChangePair, error) {
	pairs := make([]ChangePair, 0, len(changes))
	for i, c := range changes {
		oldRef, err := sideRef(i, "old", c.OldPath, c.OldMode, c.OldHash.IsZero())
		if err != nil {
			return nil, err
		}
		newRef, err := sideRef(i, "new", c.NewPath, c.NewMode, c.NewHash.IsZero())
		if err != nil {
			return nil, err
		}
		if !oldRef.IsNull() {
			oldRef.Content = HashContent(c.OldHash)
		}
		if !newRef.IsNull() {
			newRef.Content = HashContent(c.NewHash)
		}
		pairs = append(pairs, ChangePair{Old: oldRef, New: newRef})
	}
	return pairs, nil
}

func sideRef(index int, side, path string, mode filemode.FileMode, zeroHash bool) (ContentRef, error) {
	if path == "" {
		if mode != filemode.Empty || !zeroHash {
			return ContentRef{}, &git.InputShapeError{
				Index:  index,
				Reason: side + " side has mode or hash but no path",
			}
		}
		return ContentRef{}, nil
	}
	return ContentRef{Path: path, Mode: mode}, nil
}
