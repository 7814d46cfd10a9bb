package rules

import (
	"fmt"
	"strings"
)

// Wraps a validation failure with the 1-based position of the offending rule record.
type RuleError struct {
	Index int
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Index, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("'%s' parameter is missing", e.Field)
}

type TypeError struct {
	Field    string
	Expected string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("'%s' parameter must be %s", e.Field, e.Expected)
}

type ValueRangeError struct {
	Field  string
	Reason string
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("'%s' %s", e.Field, e.Reason)
}

// Returned for malformed comparison text such as ">> 80" or "> eighty".
type ConditionalSyntaxError struct {
	Field  string
	Raw    string
	Reason string
}

func (e *ConditionalSyntaxError) Error() string {
	return fmt.Sprintf("'%s' conditional %q is invalid: %s", e.Field, e.Raw, e.Reason)
}

// Names every priority value that appears more than once in a document.
type DuplicatePriorityError struct {
	Priorities []int
}

func (e *DuplicatePriorityError) Error() string {
	vals := make([]string, len(e.Priorities))
	for i, p := range e.Priorities {
		vals[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("more than one rule has the same priority (%s); priority must be unique", strings.Join(vals, ", "))
}

type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("language code %q is not supported by any text recognizer", e.Code)
}
