package services

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage rejects a blank question before any external call is made.
var ErrEmptyMessage = errors.New("no message provided")

// GenerationError means the text service returned something that could not
// be parsed into the requested structure. It aborts the enclosing request
// and carries a truncated raw excerpt for diagnosability.
type GenerationError struct {
	Reason string
	Raw    string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("text service returned invalid structure: %s", e.Reason)
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
