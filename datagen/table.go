package datagen

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/output"
)

// Table writes a human friendly view of each transaction with its entries
// aligned by display width, so account names in CJK scripts line up:
//
//	#0 2024-03-01 午饭
//	  debit   支出:用餐              20.00
//	  credit  收入:优惠或礼遇         5.00
//	  credit  负债:信用卡:中行 1234  15.00
type Table struct {
	styles *output.Styles
}

// NewTable creates a table generator colouring its output with styles.
func NewTable(styles *output.Styles) *Table {
	return &Table{styles: styles}
}

type tableRow struct {
	side    string
	debit   bool
	account string
	amount  string
}

func (g *Table) Write(w io.Writer, txs []*ledger.Transaction, number uint32) error {
	for i, tx := range txs {
		n := uint64(number) + uint64(i) + uint64(tx.NumBase)
		header := fmt.Sprintf("#%d %s", n, tx.Date)
		if tx.Description != "" {
			header += " " + strings.TrimSpace(tx.Description)
		}
		if tx.HasBuildError {
			header = g.styles.Flag(header)
		} else {
			header = g.styles.Keyword(header)
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}

		rows := make([]tableRow, 0, len(tx.DebitEntries)+len(tx.CreditEntries))
		for _, e := range tx.DebitEntries {
			rows = append(rows, tableRow{"debit", true, e.Account, e.Amount.String()})
		}
		for _, e := range tx.CreditEntries {
			rows = append(rows, tableRow{"credit", false, e.Account, e.Amount.String()})
		}

		accountWidth, amountWidth := 0, 0
		for _, r := range rows {
			accountWidth = max(accountWidth, runewidth.StringWidth(r.account))
			amountWidth = max(amountWidth, runewidth.StringWidth(r.amount))
		}

		for _, r := range rows {
			line := fmt.Sprintf("  %s  %s  %s",
				g.styles.Side(runewidth.FillRight(r.side, len("credit")), r.debit),
				g.styles.Account(runewidth.FillRight(r.account, accountWidth)),
				g.styles.Amount(runewidth.FillLeft(r.amount, amountWidth), false),
			)
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}

		if imbalance := tx.Imbalance(); !imbalance.IsZero() {
			msg := fmt.Sprintf("  imbalance %s", imbalance.Decimal().StringFixed(2))
			if _, err := fmt.Fprintln(w, g.styles.Warning(msg)); err != nil {
				return err
			}
		}
	}
	return nil
}
