package parser

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/hyoubkp/ast"
)

// ErrUnsupported is wrapped by parse errors for syntax that is recognized but
// not implemented, such as the "/" shares notation.
var ErrUnsupported = errors.New("unsupported syntax")

// ParseError represents a syntax error in one expression line.
//
// Char is the offending character; it is 0 when the error was detected at the
// end of the line. Pos.Offset is the byte offset of Char within the line.
type ParseError struct {
	Pos        ast.Position
	Char       rune
	Message    string
	Underlying error
}

func (e *ParseError) Error() string {
	location := fmt.Sprintf("%s:%d:%d", e.Pos.Filename, e.Pos.Line, e.Pos.Column)
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("line %d, column %d", e.Pos.Line, e.Pos.Column)
	}

	return fmt.Sprintf("%s: at %s: %s", location, describeChar(e.Char), e.Message)
}

func (e *ParseError) GetPosition() ast.Position {
	return e.Pos
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// At returns a copy of the error located in the given file and line. The byte
// offset and column within the line are kept.
func (e *ParseError) At(filename string, line int) *ParseError {
	c := *e
	c.Pos.Filename = filename
	c.Pos.Line = line
	return &c
}

// NewParseError creates a parse error for ch found at byte offset pos of line.
func NewParseError(line string, ch rune, pos int, msg string) *ParseError {
	return &ParseError{
		Pos:     ast.PositionIn("", 1, line, pos),
		Char:    ch,
		Message: msg,
	}
}

func describeChar(ch rune) string {
	if ch == 0 {
		return "end of line"
	}
	return fmt.Sprintf("%q", ch)
}
