package transform

import "fmt"

// Error reports unparseable or untransformable source. Line is 1-based and 0
// when the parser gave no location.
type Error struct {
	Path    string
	Message string
	Line    int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("transform %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("transform %s: %s", e.Path, e.Message)
}
