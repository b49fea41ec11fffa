package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// UnsupportedFileTypeError is returned by the strategy selector when no
// registered strategy can handle a file. It carries the full supported
// surface so callers can report exactly what would have been accepted.
type UnsupportedFileTypeError struct {
	FilePath            string
	MimeType            string
	Extension           string
	SupportedExtensions []string
	SupportedMimeTypes  []string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf(
		"unsupported file type: path=%q mime=%q extension=%q (supported extensions: %s; supported mime types: %s)",
		e.FilePath,
		e.MimeType,
		e.Extension,
		strings.Join(e.SupportedExtensions, ", "),
		strings.Join(e.SupportedMimeTypes, ", "),
	)
}

func (e *UnsupportedFileTypeError) Unwrap() error {
	return ErrInvalidInput
}
