package torrentfile

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousMode is returned when the info dictionary has both
	// "length" and "files", or neither.
	ErrAmbiguousMode = errors.New("torrentfile: info must have exactly one of length or files")

	// ErrMalformedPieces is returned when the pieces string is not a
	// multiple of 20 bytes.
	ErrMalformedPieces = errors.New("torrentfile: pieces length is not a multiple of 20")
)

// SyntaxError describes a structural bencode violation.
type SyntaxError struct {
	Pos    int // byte offset in the input
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("torrentfile: bencode syntax error at byte %d: %s", e.Pos, e.Reason)
}

// MissingFieldError is returned when a required key is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("torrentfile: missing required field %q", e.Field)
}

// InvalidFieldError is returned when a key is present with the wrong
// bencode type or an impossible value.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("torrentfile: invalid field %q: %s", e.Field, e.Reason)
}
