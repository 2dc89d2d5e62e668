package parser

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

const (
	// DirectiveTransactional controls whether a migration's steps share a
	// single transaction. Defaults to "true".
	DirectiveTransactional = "transactional"

	// DirectiveDepends lists the IDs of migrations that must run first,
	// separated by whitespace.
	DirectiveDepends = "depends"
)

var (
	// ErrInvalidDirective is returned when a directive value cannot be interpreted.
	ErrInvalidDirective = errors.New("invalid directive")

	directivePattern = regexp.MustCompile(`^\s*--\s*([A-Za-z_][\w-]*)\s*:\s*(.*)$`)
	commentOrEmpty   = regexp.MustCompile(`^(\s*|\s*--.*)$`)
	commentMarker    = regexp.MustCompile(`^\s*--\s*`)
)

// Directives maps directive names to their raw values.
type Directives map[string]string

// Get returns the value for key, or def when the directive is absent.
func (d Directives) Get(key, def string) string {
	if v, ok := d[key]; ok {
		return v
	}

	return def
}

// Transactional reports the value of the transactional directive, which is
// true when the directive is absent. Values are compared case-insensitively;
// anything other than "true" or "false" is an error.
func (d Directives) Transactional() (bool, error) {
	v := strings.TrimSpace(d.Get(DirectiveTransactional, "true"))
	switch strings.ToLower(v) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidDirective, "%s: %q", DirectiveTransactional, v)
	}
}

// Depends returns the migration IDs listed in the depends directive.
func (d Directives) Depends() []string {
	return strings.Fields(d.Get(DirectiveDepends, ""))
}

// String renders the directives as a comment block, one "-- key: value" line
// per directive in key order. Parsing the output yields the same directives.
func (d Directives) String() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "-- %s: %s\n", k, d[k])
	}

	return sb.String()
}

// ParseDirectives extracts the directive block from stmt with the default parser.
func ParseDirectives(stmt string) (Directives, string, string) {
	return defaultParser.ParseDirectives(stmt)
}

// ParseDirectives reads the comment lines at the top of stmt. Lines of the form
// "-- key: value" with a recognized key become directives; a repeated key has
// its values joined with a space. Keys are case-sensitive. Blank lines and
// other comments become the description, with only the leading "--" marker
// removed. The first line that is neither ends the block.
//
// It returns the directives, the description and stmt with the block removed.
//
// Example:
//
//	d, desc, sql := parser.ParseDirectives("-- Add users\n-- depends: init\nCREATE TABLE users (id INT);")
//	// d    == Directives{"depends": "init"}
//	// desc == "Add users"
//	// sql  == "CREATE TABLE users (id INT);"
func (p *Parser) ParseDirectives(stmt string) (Directives, string, string) {
	directives := Directives{}
	eol := lineEnding(stmt)
	lines := strings.Split(stmt, eol)

	var comments []string
	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]

		if m := directivePattern.FindStringSubmatch(line); m != nil {
			key := m[1]
			if _, ok := p.names[key]; ok {
				val := strings.TrimSpace(m[2])
				if prev, exists := directives[key]; exists {
					directives[key] = prev + " " + val
				} else {
					directives[key] = val
				}
				continue
			}
		}

		if !commentOrEmpty.MatchString(line) {
			break
		}

		comments = append(comments, strings.TrimRightFunc(commentMarker.ReplaceAllString(line, ""), unicode.IsSpace))
	}

	description := strings.TrimSpace(strings.Join(comments, "\n"))
	return directives, description, strings.Join(lines[i:], eol)
}

func lineEnding(s string) string {
	idx := strings.IndexAny(s, "\r\n")
	switch {
	case idx < 0:
		return "\n"
	case s[idx] == '\n':
		return "\n"
	case idx+1 < len(s) && s[idx+1] == '\n':
		return "\r\n"
	default:
		return "\r"
	}
}
