package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
)

// Error collects field-level validation failures.
// It matches apperrors.ErrValidation and every sentinel recorded in Causes.
type Error struct {
	Fields map[string]string
	Causes []error
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes ErrValidation and the specific causes to errors.Is.
func (e *Error) Unwrap() []error {
	return append([]error{apperrors.ErrValidation}, e.Causes...)
}

// collector accumulates failures; the first failure per field wins.
type collector struct {
	fields map[string]string
	causes []error
}

func (c *collector) add(field string, cause error, msg string) {
	if c.fields == nil {
		c.fields = make(map[string]string)
	}
	if _, ok := c.fields[field]; ok {
		return
	}
	if msg == "" {
		msg = cause.Error()
	}
	c.fields[field] = msg
	c.causes = append(c.causes, cause)
}

func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &Error{Fields: c.fields, Causes: c.causes}
}
