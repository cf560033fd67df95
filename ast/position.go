package ast

import "fmt"

// Position represents a location in the input: a line of a file (or stdin)
// and the byte offset of a character within that line.
type Position struct {
	Filename string
	Offset   int // Byte offset within the line
	Line     int // Line number (1-indexed)
	Column   int // Column number (1-indexed, in runes)
}

// IsZero returns true if this is an uninitialized position.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.Offset == 0 && p.Filename == ""
}

// PositionIn builds the position of byte offset within line.
func PositionIn(filename string, lineNo int, line string, offset int) Position {
	if offset > len(line) {
		offset = len(line)
	}
	column := 1
	for range line[:offset] {
		column++
	}
	return Position{Filename: filename, Offset: offset, Line: lineNo, Column: column}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// GoString returns a Go-syntax representation of the position.
func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d, Column: %d}", p.Filename, p.Line, p.Column)
}
