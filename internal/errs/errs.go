// Package errs defines the error taxonomy shared by the pipeline stages and
// the HTTP layer.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure by the stage it occurred in.
type Kind string

const (
	KindAuth     Kind = "unauthorized"
	KindConfig   Kind = "misconfigured"
	KindFetch    Kind = "fetch_failed"
	KindExtract  Kind = "extraction_failed"
	KindIndex    Kind = "indexing_failed"
	KindAnswer   Kind = "answer_failed"
	KindInternal Kind = "internal"
)

// Error wraps a cause with its stage kind. Question is the 1-based index of
// the failed question for answer-stage errors, 0 otherwise.
type Error struct {
	Kind     Kind
	Question int
	Err      error
}

func (e *Error) Error() string {
	if e.Question > 0 {
		return fmt.Sprintf("%s (question %d): %v", e.Kind, e.Question, e.Err)
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a typed error from a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap attaches a kind to an existing error.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Question marks err as the failure of the 1-based question index.
func Question(index int, err error) *Error {
	return &Error{Kind: KindAnswer, Question: index, Err: err}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// QuestionOf returns the failed question index carried by err, or 0.
func QuestionOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Question
	}
	return 0
}
