package testcase

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is returned when a document has no level-1 heading
	// or an unterminated front matter block.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrInvalidID is returned when the title does not start with a test case id.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidEstimate is returned when the estimate is neither <N>h nor <N>m.
	ErrInvalidEstimate = errors.New("invalid estimate")
)

// DocumentError ties a parse failure to the file it came from.
type DocumentError struct {
	File string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// PreconditionError is a fatal error raised when the command cannot proceed
// because its inputs or the remote state are not what it requires.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string {
	return e.Msg
}

// Preconditionf builds a PreconditionError with a formatted message.
func Preconditionf(format string, args ...interface{}) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err wraps a PreconditionError.
func IsPrecondition(err error) bool {
	var p *PreconditionError
	return errors.As(err, &p)
}
