package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/output"
)

// writeSummary prints the account tree of s with right-aligned balances,
// followed by the total and the number of flagged transactions:
//
//	资产      -20.00
//	  银行    -20.00
//	    工行  -20.00
//	支出       20.00
//	  用餐     20.00
//	total       0.00
//	flagged 0 of 1 transaction(s)
func writeSummary(w io.Writer, s *ledger.Summary, styles *output.Styles) {
	type row struct {
		label  string
		amount string
		neg    bool
	}

	var rows []row
	ledger.Walk(s.Tree(), func(n *ledger.BalanceNode) {
		rows = append(rows, row{
			label:  strings.Repeat("  ", n.Depth) + n.Name,
			amount: n.Balance.StringFixed(2),
			neg:    n.Balance.IsNegative(),
		})
	})
	total := s.Total()
	rows = append(rows, row{label: "total", amount: total.StringFixed(2), neg: total.IsNegative()})

	labelWidth, amountWidth := 0, 0
	for _, r := range rows {
		labelWidth = max(labelWidth, runewidth.StringWidth(r.label))
		amountWidth = max(amountWidth, runewidth.StringWidth(r.amount))
	}

	for i, r := range rows {
		label := runewidth.FillRight(r.label, labelWidth)
		if i == len(rows)-1 {
			label = styles.Keyword(label)
		} else {
			label = styles.Account(label)
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n", label, styles.Amount(runewidth.FillLeft(r.amount, amountWidth), r.neg))
	}

	flagged := fmt.Sprintf("flagged %d of %d transaction(s)", s.Flagged(), s.Transactions())
	if s.Flagged() > 0 {
		flagged = styles.Flag(flagged)
	} else {
		flagged = styles.Dim(flagged)
	}
	_, _ = fmt.Fprintln(w, flagged)
}
