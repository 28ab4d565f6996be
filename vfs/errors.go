package vfs

import (
	"errors"
	"fmt"
)

// PathErrorKind classifies a failed tree operation.
type PathErrorKind int

const (
	// KindNotFound means no node exists at the path.
	KindNotFound PathErrorKind = iota
	// KindAlreadyExists means a node already occupies the path.
	KindAlreadyExists
	// KindInvalidOperation means the operation is not allowed on the path,
	// e.g. deleting or renaming root.
	KindInvalidOperation
)

func (k PathErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindInvalidOperation:
		return "invalid operation"
	default:
		return "unknown"
	}
}

// PathError is returned by tree operations that fail on a specific path.
type PathError struct {
	Op   string
	Path string
	Kind PathErrorKind
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
}

// TypeMismatchError is returned when an operation expects one node kind and
// finds the other, e.g. reading a directory as a file.
type TypeMismatchError struct {
	Op   string
	Path string
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s %s: want %s, got %s", e.Op, e.Path, e.Want, e.Got)
}

// ResolutionError is returned when an import specifier cannot be resolved:
// either a relative import with no matching node, or a bare specifier with no
// entry in the externals table (External true).
type ResolutionError struct {
	From      string
	Specifier string
	External  bool
}

func (e *ResolutionError) Error() string {
	if e.External {
		return fmt.Sprintf("unmapped external specifier %q imported from %s", e.Specifier, e.From)
	}
	return fmt.Sprintf("cannot resolve import %q from %s", e.Specifier, e.From)
}

// IsNotFound reports whether err is a PathError with KindNotFound.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsAlreadyExists reports whether err is a PathError with KindAlreadyExists.
func IsAlreadyExists(err error) bool {
	return isKind(err, KindAlreadyExists)
}

// IsInvalidOperation reports whether err is a PathError with KindInvalidOperation.
func IsInvalidOperation(err error) bool {
	return isKind(err, KindInvalidOperation)
}

func isKind(err error, kind PathErrorKind) bool {
	var pe *PathError
	return errors.As(err, &pe) && pe.Kind == kind
}
