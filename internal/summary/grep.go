package summary

import (
	"fmt"
	"regexp"
	"strings"
)

// MessageFilter selects commits whose message matches any of a set of
// case-insensitive patterns. A filter with no patterns matches everything.
type MessageFilter struct {
	patterns []*regexp.Regexp
}

// NewMessageFilter compiles patterns. Blank patterns are skipped.
func NewMessageFilter(patterns []string) (*MessageFilter, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid message pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &MessageFilter{patterns: compiled}, nil
}

// Match reports whether message matches.
func (f *MessageFilter) Match(message string) bool {
	if len(f.patterns) == 0 {
		return true
	}
	for _, re := range f.patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// Filter keeps the records whose full message matches, in order.
func (f *MessageFilter) Filter(records []CommitRecord) []CommitRecord {
	if len(f.patterns) == 0 {
		return records
	}
	out := make([]CommitRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r.Message) {
			out = append(out, r)
		}
	}
	return out
}
