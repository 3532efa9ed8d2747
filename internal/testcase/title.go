package testcase

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	titleRegex   = regexp.MustCompile(`^\s*#\s+(.*?)\s*$`)
	idRegex      = regexp.MustCompile(`^([A-Z][0-9]{2}[AB]?) - (.*)$`)
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// IDSeparator joins the id and the display title in a document heading.
const IDSeparator = " - "

const maxFileNameLength = 64

// ExtractTitle returns the first level-1 heading of content and the lines
// that follow it. Lines before the heading are dropped.
func ExtractTitle(content string) (title string, body string, err error) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if m := titleRegex.FindStringSubmatch(line); m != nil {
			return m[1], strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", fmt.Errorf("%w: title not found", ErrMalformedDocument)
}

// ExtractID splits a heading of the form "ID - Title".
func ExtractID(title string) (id string, rest string, err error) {
	m := idRegex.FindStringSubmatch(title)
	if m == nil {
		return "", "", fmt.Errorf("%w: the title %q does not start with an id like A01 - ", ErrInvalidID, title)
	}
	return m[1], m[2], nil
}

// Slug lowercases s, drops everything but letters, digits, whitespace and
// hyphens, and joins the words with single hyphens. The result is at most
// 64 characters long and never ends with a hyphen.
func Slug(s string) string {
	s = strings.ToLower(s)
	s = invalidChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = separators.ReplaceAllString(s, "-")
	if len(s) > maxFileNameLength {
		s = s[:maxFileNameLength]
	}
	return strings.TrimRight(s, "-")
}

// DesiredFileName is the canonical file name for a test case.
func DesiredFileName(t TestCase) string {
	return Slug(t.ID+IDSeparator+t.Title) + ".md"
}
