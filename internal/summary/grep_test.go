package summary

import "testing"

func TestMessageFilter_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		message  string
		want     bool
	}{
		{name: "NoPatternsMatchAll", patterns: nil, message: "anything", want: true},
		{name: "BlankPatternsIgnored", patterns: []string{"  "}, message: "anything", want: true},
		{name: "CaseInsensitive", patterns: []string{`\bfix\b`}, message: "FIX the parser", want: true},
		{name: "NoMatch", patterns: []string{`\bfix\b`}, message: "prefix only", want: false},
		{name: "AnyPattern", patterns: []string{"^docs", "release"}, message: "Cut release 1.2", want: true},
		{name: "BodyMatches", patterns: []string{"closes #\\d+"}, message: "Tweak\n\nCloses #12", want: true},
		{name: "ExplicitFlagKept", patterns: []string{"(?i)WIP"}, message: "wip: draft", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewMessageFilter(tt.patterns)
			if err != nil {
				t.Fatalf("NewMessageFilter: %v", err)
			}
			if got := f.Match(tt.message); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestNewMessageFilter_InvalidPattern(t *testing.T) {
	if _, err := NewMessageFilter([]string{"("}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestMessageFilter_Filter(t *testing.T) {
	records := []CommitRecord{
		{SHA: "1", Message: "Fix crash"},
		{SHA: "2", Message: "Add feature"},
		{SHA: "3", Message: "Refactor\n\nfixes #4"},
	}

	f, err := NewMessageFilter([]string{`\bfix(es)?\b`})
	if err != nil {
		t.Fatalf("NewMessageFilter: %v", err)
	}
	got := f.Filter(records)
	if len(got) != 2 || got[0].SHA != "1" || got[1].SHA != "3" {
		t.Fatalf("Filter = %+v", got)
	}
}
