// Package output provides terminal styling for transactions, balances and
// diagnostics.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles colours text for the writer it was created for. Writers that are
// not terminals get plain text.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

func (s *Styles) color(text, color string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(color))
}

// Success returns text in bold green.
func (s *Styles) Success(text string) string {
	return s.color(text, "2").Bold().String()
}

// Error returns text in bold red.
func (s *Styles) Error(text string) string {
	return s.color(text, "1").Bold().String()
}

// Warning returns text in bold yellow.
func (s *Styles) Warning(text string) string {
	return s.color(text, "3").Bold().String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.color(text, "6").String()
}

// Account returns a styled account name (yellow).
func (s *Styles) Account(text string) string {
	return s.color(text, "3").String()
}

// Amount styles an amount: magenta, or red when negative.
func (s *Styles) Amount(text string, negative bool) string {
	if negative {
		return s.color(text, "1").String()
	}
	return s.color(text, "5").String()
}

// Side labels the debit side in green and the credit side in blue.
func (s *Styles) Side(text string, debit bool) string {
	if debit {
		return s.color(text, "2").String()
	}
	return s.color(text, "4").String()
}

// Flag marks a transaction that needs manual correction.
func (s *Styles) Flag(text string) string {
	return s.color(text, "1").Bold().Underline().String()
}

// Keyword returns text in bold.
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing returns a timing string, red for slow operations and dimmed otherwise.
func (s *Styles) Timing(text string, isSlowOperation bool) string {
	if isSlowOperation {
		return s.color(text, "1").String()
	}
	return s.Dim(text)
}

// Output returns the underlying termenv Output.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
