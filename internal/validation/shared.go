package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error is a validation failure with one message per offending field.
// Err, when set, is the sentinel the failure maps to.
type Error struct {
	Err    error
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fieldError(sentinel error, field, msg string) *Error {
	return &Error{Err: sentinel, Fields: map[string]string{field: msg}}
}
