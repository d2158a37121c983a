// Package summary extracts display records from commits.
package summary

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// Contributor is a commit author or committer.
type Contributor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Raw   string `json:"raw"`
}

// Key returns a normalized identifier for grouping contributors.
func (c Contributor) Key() string {
	if c.Email == "" {
		return c.Raw
	}
	return strings.ToLower(c.Email)
}

// Commit is the raw commit metadata a CommitRecord is built from.
// Author and Committer are "Name <email>" strings.
type Commit struct {
	SHA       string
	Author    string
	Committer string
	Time      int64 // Committer time, Unix seconds
	Timezone  int   // Committer offset, seconds east of UTC
	Message   string
}

// CommitRecord is the normalized description of a commit.
type CommitRecord struct {
	SHA         string      `json:"sha"`
	Author      Contributor `json:"author"`
	Committer   Contributor `json:"committer"`
	Time        int64       `json:"time"`
	Timezone    int         `json:"timezone"`
	Message     string      `json:"message"`
	Summary     string      `json:"summary"`
	Description string      `json:"description"`
}

// MetadataParseError reports a contributor string that is not "Name <email>".
type MetadataParseError struct {
	Raw    string
	Reason string
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("malformed contributor %q: %s", e.Raw, e.Reason)
}

// ParseContributor splits raw at its last space into a name and a
// bracketed email.
func ParseContributor(raw string) (Contributor, error) {
	i := strings.LastIndexByte(raw, ' ')
	if i < 0 {
		return Contributor{}, &MetadataParseError{Raw: raw, Reason: "no space before email"}
	}
	email := raw[i+1:]
	if len(email) < 2 || email[0] != '<' || email[len(email)-1] != '>' {
		return Contributor{}, &MetadataParseError{Raw: raw, Reason: "email not bracketed"}
	}
	return Contributor{Name: raw[:i], Email: email[1 : len(email)-1], Raw: raw}, nil
}

// ContributorFromRaw parses raw, falling back to the whole string as the
// name with an empty email when it is malformed.
func ContributorFromRaw(raw string) Contributor {
	c, err := ParseContributor(raw)
	if err != nil {
		return Contributor{Name: raw, Raw: raw}
	}
	return c
}

// Summarize builds the record for c. It never fails: malformed contributor
// strings degrade to the fallback form.
func Summarize(c Commit) CommitRecord {
	lines := splitLines(c.Message)

	var summary string
	if len(lines) > 0 {
		summary = lines[0]
	}

	var body []string
	if len(lines) > 1 {
		for _, l := range lines[1:] {
			if l != "" {
				body = append(body, l)
			}
		}
	}

	return CommitRecord{
		SHA:         c.SHA,
		Author:      ContributorFromRaw(c.Author),
		Committer:   ContributorFromRaw(c.Committer),
		Time:        c.Time,
		Timezone:    c.Timezone,
		Message:     c.Message,
		Summary:     summary,
		Description: strings.Join(body, "\n"),
	}
}

// FromObject converts a go-git commit into summarizer input.
func FromObject(c *object.Commit) Commit {
	_, offset := c.Committer.When.Zone()
	return Commit{
		SHA:       c.Hash.String(),
		Author:    c.Author.String(),
		Committer: c.Committer.String(),
		Time:      c.Committer.When.Unix(),
		Timezone:  offset,
		Message:   c.Message,
	}
}

// SummarizeObject summarizes a go-git commit.
func SummarizeObject(c *object.Commit) CommitRecord {
	return Summarize(FromObject(c))
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not
// produce an empty last line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
