package datagen

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/robinvdvleuten/hyoubkp/ledger"
)

var gnuCashHeader = []string{
	"Date",
	"Transaction ID",
	"Number",
	"Description",
	"Reconcile",
	"Full Account Name",
	"Amount Num.",
	"Value Num.",
}

// GnuCash writes CSV for GnuCash's multi-split transaction import. Every
// entry becomes one row, credit entries first with negated amounts; rows of
// one transaction share a transaction ID.
type GnuCash struct {
	// NewID returns the ID of the next transaction.
	NewID func() string
}

// NewGnuCash creates a generator identifying transactions by random UUIDs.
func NewGnuCash() *GnuCash {
	return &GnuCash{NewID: func() string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}}
}

func (g *GnuCash) Write(w io.Writer, txs []*ledger.Transaction, number uint32) error {
	cw := csv.NewWriter(w)

	if number == 0 {
		if err := cw.Write(gnuCashHeader); err != nil {
			return err
		}
	}

	for i, tx := range txs {
		id := g.NewID()
		n := uint64(number) + uint64(i) + uint64(tx.NumBase)
		description := tx.Description
		if description == "" {
			description = " "
		}

		row := func(e ledger.Entry, sign string) error {
			amount := sign + e.Amount.String()
			return cw.Write([]string{
				tx.Date.String(),
				id,
				strconv.FormatUint(n, 10),
				description,
				"n",
				e.Account,
				amount,
				amount,
			})
		}

		for _, e := range tx.CreditEntries {
			if err := row(e, "-"); err != nil {
				return err
			}
		}
		for _, e := range tx.DebitEntries {
			if err := row(e, ""); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
