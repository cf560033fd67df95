package cli

import (
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/robinvdvleuten/hyoubkp/errors"
	"github.com/robinvdvleuten/hyoubkp/parser"
)

const (
	errorFormatText = "text"
	errorFormatJSON = "json"
)

// renderError writes err to w in the requested format. Parse errors are
// located in filename and, for text output, shown with their source line.
func renderError(w io.Writer, err error, filename string, source []byte, format string) {
	var perr *parser.ParseError
	if stdErrors.As(err, &perr) && filename != "" {
		err = perr.At(filename, perr.Pos.Line)
	}

	var formatter errors.Formatter
	switch format {
	case errorFormatJSON:
		formatter = errors.NewJSONFormatter()
	default:
		formatter = errors.NewTextFormatter(errors.WithSource(source))
	}
	_, _ = fmt.Fprintln(w, formatter.Format(err))
}
