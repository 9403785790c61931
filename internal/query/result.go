package query

import (
	"errors"

	"github.com/briangreenhill/matchday/internal/requests"
)

// Result is what every query returns: data on success, a user-facing
// error message otherwise. It encodes as {"data": ..., "error": ...}.
type Result[T any] struct {
	Data  T       `json:"data"`
	Error *string `json:"error"`

	err error
}

// OK reports whether the query produced data
func (r Result[T]) OK() bool { return r.Error == nil }

// Err returns the underlying error, nil on success
func (r Result[T]) Err() error { return r.err }

// Kind classifies the failure, KindUnknown on success or for
// unclassified errors
func (r Result[T]) Kind() requests.Kind {
	var e *requests.Error
	if errors.As(r.err, &e) {
		return e.Kind
	}
	return requests.KindUnknown
}

func succeeded[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Failed wraps err into an unsuccessful result carrying its user message
func Failed[T any](err error) Result[T] {
	msg := requests.Message(err)
	return Result[T]{Error: &msg, err: err}
}
