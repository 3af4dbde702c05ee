package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotReadOnly rejects generated query text that is not a plain SELECT.
// The text service is untrusted; this guard is what keeps generated
// mutating statements away from the engine.
var ErrNotReadOnly = errors.New("only read-only queries allowed")

var (
	fenceOpenRe   = regexp.MustCompile("(?m)^```(?:json)?[ \t]*")
	fenceCloseRe  = regexp.MustCompile("(?m)```[ \t]*$")
	lineCommentRe = regexp.MustCompile(`(?m)^[ \t]*--.*$`)
)

// StripFences removes markdown code-fence wrapping that models add despite
// instructions not to.
func StripFences(raw string) string {
	raw = fenceOpenRe.ReplaceAllString(raw, "")
	raw = fenceCloseRe.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}

// StripLineComments drops whole-line SQL comments.
func StripLineComments(sql string) string {
	return strings.TrimSpace(lineCommentRe.ReplaceAllString(sql, ""))
}

// EnsureReadOnly verifies the first token is SELECT and that the text holds
// a single statement. Checking only the leading keyword would still let a
// SELECT smuggle destructive trailing statements through, so interior
// semicolons are refused too.
func EnsureReadOnly(sql string) error {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty query", ErrNotReadOnly)
	}
	if !strings.EqualFold(fields[0], "SELECT") {
		return ErrNotReadOnly
	}
	trimmed := strings.TrimRight(strings.TrimSpace(sql), "; \t\r\n")
	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("%w: stacked statements rejected", ErrNotReadOnly)
	}
	return nil
}
