// Package pngerr defines the error kinds shared across the decoder
// pipeline: malformed input (FormatError), and I/O failures wrapped with a
// stack trace via github.com/pkg/errors so a CLI caller can report where a
// read or seek actually failed.
package pngerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatError describes a PNG, zlib, or DEFLATE stream that does not
// conform to its framing rules. It is fatal to the current decode; the
// decoder never attempts to resynchronize past one.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("png: invalid format: %s", string(e))
}

// WrapIO wraps an I/O error from the byte source with a stack trace. It
// returns nil if err is nil.
func WrapIO(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}
