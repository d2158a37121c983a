package git

import (
	"fmt"
	"strings"
)

// ParseDiffSpec splits a diff spec into base and head refs.
// Supports both "..." (three-dot) and ".." (two-dot) syntax.
// Three-dot specs report mergeBase so the caller diffs against the merge base.
func ParseDiffSpec(spec string) (base, head string, mergeBase bool, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", false, fmt.Errorf("empty diff spec")
	}

	// Try three-dot first (merge-base comparison)
	if idx := strings.Index(spec, "..."); idx != -1 {
		base = spec[:idx]
		head = spec[idx+3:]
		mergeBase = true
	} else if idx := strings.Index(spec, ".."); idx != -1 {
		base = spec[:idx]
		head = spec[idx+2:]
	} else {
		return "", "", false, fmt.Errorf("invalid diff spec %q: expected 'base..head' or 'base...head'", spec)
	}

	if base == "" {
		return "", "", false, fmt.Errorf("invalid diff spec %q: missing base ref", spec)
	}
	if head == "" {
		head = "HEAD"
	}

	return base, head, mergeBase, nil
}
