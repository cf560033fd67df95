// Package datagen renders transactions for downstream tools.
//
// Generators are called once per transaction with a running number that
// starts at zero, so formats with a header emit it only for number 0:
//
//	gen, _ := datagen.New(datagen.KindGnuCash, os.Stdout)
//	for i, tx := range txs {
//	    gen.Write(os.Stdout, []*ledger.Transaction{tx}, uint32(i))
//	}
package datagen

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/output"
)

// ErrUnknownKind is returned by New for an unknown generator name.
var ErrUnknownKind = errors.New("unknown data generator")

// Generator writes transactions in some output format.
type Generator interface {
	Write(w io.Writer, txs []*ledger.Transaction, number uint32) error
}

// Kind names a generator.
type Kind string

const (
	KindStr     Kind = "str"
	KindGnuCash Kind = "gnucash"
	KindTable   Kind = "table"
)

// Kinds lists every available generator.
func Kinds() []Kind {
	return []Kind{KindStr, KindGnuCash, KindTable}
}

// New creates the generator of the given kind. The table generator styles
// its output for w.
func New(kind Kind, w io.Writer) (Generator, error) {
	switch kind {
	case KindStr:
		return Str{}, nil
	case KindGnuCash:
		return NewGnuCash(), nil
	case KindTable:
		return NewTable(output.NewStyles(w)), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// String renders txs with g into a string.
func String(g Generator, txs []*ledger.Transaction, number uint32) (string, error) {
	var buf bytes.Buffer
	if err := g.Write(&buf, txs, number); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Str writes the canonical rendering of each transaction followed by a
// blank line.
type Str struct{}

func (Str) Write(w io.Writer, txs []*ledger.Transaction, _ uint32) error {
	for _, tx := range txs {
		if _, err := fmt.Fprintln(w, tx.String()); err != nil {
			return err
		}
	}
	return nil
}
