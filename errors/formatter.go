// Package errors renders parse and rule errors for people and programs.
//
// TextFormatter writes a message followed by the offending source line and a
// caret under the failing character. JSONFormatter emits structured records
// for bots and other front-ends.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/hyoubkp/ast"
	"github.com/robinvdvleuten/hyoubkp/parser"
	"github.com/robinvdvleuten/hyoubkp/rules"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// TextFormatter formats errors for terminal output.
type TextFormatter struct {
	source []byte
}

// TextFormatterOption configures a TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the input the errors' line numbers refer to.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Errors carrying a position get the source
// line and a caret when the source is known.
func (tf *TextFormatter) Format(err error) string {
	var perr *parser.ParseError
	if stderrors.As(err, &perr) && tf.source != nil {
		return tf.formatWithSourceContext(perr.GetPosition(), err.Error())
	}
	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	var buf bytes.Buffer
	for i, err := range errs {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(tf.Format(err))
	}
	return buf.String()
}

// formatWithSourceContext writes the message, the line before the error for
// context, the error line and a caret under the column. The caret is placed
// by display width so it lines up under wide characters.
func (tf *TextFormatter) formatWithSourceContext(pos ast.Position, message string) string {
	lines := strings.Split(string(tf.source), "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return message
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	if pos.Line > 1 {
		buf.WriteString("   ")
		buf.WriteString(lines[pos.Line-2])
		buf.WriteByte('\n')
	}

	line := lines[pos.Line-1]
	buf.WriteString("   ")
	buf.WriteString(line)
	buf.WriteByte('\n')

	offset := min(pos.Offset, len(line))
	buf.WriteString("   ")
	buf.WriteString(strings.Repeat(" ", runewidth.StringWidth(line[:offset])))
	buf.WriteString("^\n")

	return buf.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Position *PositionJSON  `json:"position,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// PositionJSON represents a position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    "error",
		Message: err.Error(),
		Details: make(map[string]any),
	}

	var perr *parser.ParseError
	var rerr *rules.RuleError
	switch {
	case stderrors.As(err, &perr):
		errJSON.Type = "parse"
		pos := perr.GetPosition()
		errJSON.Position = &PositionJSON{
			Filename: pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
			Offset:   pos.Offset,
		}
		if perr.Char != 0 {
			errJSON.Details["char"] = string(perr.Char)
		}
		if stderrors.Is(err, parser.ErrUnsupported) {
			errJSON.Details["unsupported"] = true
		}
	case stderrors.As(err, &rerr):
		errJSON.Type = "rule"
		if rerr.Ruleset != "" {
			errJSON.Details["ruleset"] = rerr.Ruleset
		}
		if rerr.Index >= 0 && rerr.Ruleset != "" {
			errJSON.Details["entry"] = rerr.Index
		}
		if rerr.Underlying != nil {
			errJSON.Details["reason"] = rerr.Underlying.Error()
		}
	}

	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}
	return errJSON
}

var (
	_ Formatter = (*TextFormatter)(nil)
	_ Formatter = (*JSONFormatter)(nil)
)
