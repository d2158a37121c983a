package git

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter applies include/exclude glob patterns to repository paths.
// Results are memoized per path; a PathFilter is safe for concurrent use.
type PathFilter struct {
	include []string
	exclude []string

	mu    sync.Mutex
	cache map[string]bool
}

// NewPathFilter creates a filter. Patterns are validated up front so that a
// bad pattern fails before any tree is walked.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &PathFilter{
		include: include,
		exclude: exclude,
		cache:   make(map[string]bool),
	}, nil
}

// Empty reports whether the filter accepts every path.
func (f *PathFilter) Empty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// Match checks if a path passes the include/exclude filters.
func (f *PathFilter) Match(path string) (bool, error) {
	if f.Empty() {
		return true, nil
	}

	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	f.mu.Lock()
	if v, ok := f.cache[path]; ok {
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()

	v, err := f.match(path)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	f.cache[path] = v
	f.mu.Unlock()
	return v, nil
}

func (f *PathFilter) match(path string) (bool, error) {
	// Check exclude patterns first
	for _, pattern := range f.exclude {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return false, nil
		}
	}

	// If no include patterns, accept all
	if len(f.include) == 0 {
		return true, nil
	}

	for _, pattern := range f.include {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}

	return false, nil
}

// MatchChange accepts a change when either of its paths passes the filter.
func (f *PathFilter) MatchChange(c RawChange) (bool, error) {
	for _, p := range []string{c.NewPath, c.OldPath} {
		if p == "" {
			continue
		}
		ok, err := f.Match(p)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// FilterChanges drops changes rejected by the filter, preserving order.
func (f *PathFilter) FilterChanges(changes []RawChange) ([]RawChange, error) {
	if f.Empty() {
		return changes, nil
	}
	out := make([]RawChange, 0, len(changes))
	for _, c := range changes {
		ok, err := f.MatchChange(c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}
