package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflicting record")
	ErrAdjacency   = errors.New("municipalities are not adjacent")
	ErrEligibility = errors.New("no eligible reallocation capacity")
	ErrStaleState  = errors.New("state changed since proposal")
	ErrNotFound    = errors.New("record not found")

	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)

// RejectionError explains why an operation was refused. It unwraps to one of the
// sentinel errors above so callers branch with errors.Is.
type RejectionError struct {
	Kind         error
	Op           string
	Municipality string
	Record       string
	Requested    string
	Available    *int
	Detail       string
}

func (e *RejectionError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("rejected")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	fields := make([]string, 0, 4)
	if e.Municipality != "" {
		fields = append(fields, "municipality="+e.Municipality)
	}
	if e.Record != "" {
		fields = append(fields, "record="+e.Record)
	}
	if e.Requested != "" {
		fields = append(fields, "requested="+e.Requested)
	}
	if e.Available != nil {
		fields = append(fields, fmt.Sprintf("available=%d", *e.Available))
	}
	if len(fields) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(fields, " "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *RejectionError) Unwrap() error {
	return e.Kind
}

// Reject builds a RejectionError; options fill in the context fields.
func Reject(kind error, op string, detail string, opts ...Option) *RejectionError {
	err := &RejectionError{Kind: kind, Op: op, Detail: detail}
	for _, opt := range opts {
		opt(err)
	}
	return err
}

type Option func(*RejectionError)

func Municipality(id string) Option {
	return func(e *RejectionError) { e.Municipality = id }
}

func Record(id string) Option {
	return func(e *RejectionError) { e.Record = id }
}

func Requested(value any) Option {
	return func(e *RejectionError) { e.Requested = fmt.Sprint(value) }
}

func Available(capacity int) Option {
	return func(e *RejectionError) {
		v := capacity
		e.Available = &v
	}
}

// AsRejection extracts the RejectionError carried by err, if any.
func AsRejection(err error) (*RejectionError, bool) {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection, true
	}
	return nil, false
}
