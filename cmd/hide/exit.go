package main

import (
	"context"
	"errors"
	"syscall"

	"github.com/andresmejia3/hide/v2/internal/config"
	"github.com/andresmejia3/hide/v2/pkg/format"
	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/andresmejia3/hide/v2/pkg/lsb"
	"github.com/andresmejia3/hide/v2/pkg/stego"
	"github.com/spf13/cobra"
)

// Exit statuses follow the BSD errno values so they mean the same on every
// platform.
const (
	exitFailure     = 1
	exitInvalid     = 22  // EINVAL
	exitNoSpace     = 28  // ENOSPC
	exitFileType    = 79  // EFTYPE
	exitIllegalSeq  = 84  // EILSEQ
	exitInterrupted = 130 // 128 + SIGINT
)

// usageError marks bad arguments, flags or configuration.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func exitCode(err error) int {
	var usage usageError
	var errno syscall.Errno
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage), errors.Is(err, config.ErrInvalid):
		return exitInvalid
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, lsb.ErrInsufficientCapacity):
		return exitNoSpace
	case errors.Is(err, format.ErrUnsupportedFormat), errors.Is(err, jpeg.ErrUnsupported):
		return exitFileType
	case errors.Is(err, jpeg.ErrMalformed), errors.Is(err, jpeg.ErrTruncated),
		errors.Is(err, lsb.ErrInvalidLength), errors.Is(err, stego.ErrECC),
		errors.Is(err, stego.ErrCompressed):
		return exitIllegalSeq
	case errors.As(err, &errno) && errno != 0:
		return int(errno)
	}
	return exitFailure
}
