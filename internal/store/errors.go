package store

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindRemote     Kind = "remote"
)

// Error is returned by every Store operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not a store error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func validationErr(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

func authErr(op string) error {
	return &Error{Kind: KindAuth, Op: op, Msg: "you must be logged in"}
}

func notFoundErr(op, what string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: what + " not found"}
}

func remoteErr(op, msg string, err error) error {
	return &Error{Kind: KindRemote, Op: op, Msg: msg, Err: err}
}
