package jpeg

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by this package matches one of them
// under errors.Is, except plain I/O errors from the underlying reader or writer.
var (
	ErrUnsupported = errors.New("unsupported JPEG feature")
	ErrMalformed   = errors.New("malformed JPEG")
	ErrTruncated   = errors.New("truncated JPEG stream")
)

// FormatError reports a structural violation of the JPEG syntax.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed JPEG at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrMalformed }

// UnsupportedError reports a valid JPEG feature outside the baseline subset.
type UnsupportedError struct {
	Offset  int
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported JPEG feature at offset %d: %s", e.Offset, e.Feature)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

func malformed(offset int, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func unsupported(offset int, feature string) error {
	return &UnsupportedError{Offset: offset, Feature: feature}
}

func truncated(offset int) error {
	return fmt.Errorf("%w at offset %d", ErrTruncated, offset)
}
