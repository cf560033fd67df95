// Package ledger turns parsed expressions into double-entry transactions.
//
// A Factory is fed the sub-expressions of one input line in order. For every
// sub-expression it asks a TokenMapper to resolve the credit and debit tokens
// into canonical account names, then emits debit and credit entries for each
// leg. Build finalizes the result into a Transaction.
//
// Resolution problems never abort a transaction. Unresolved accounts fall back
// to the mapper's fallback account and the transaction is flagged with
// HasBuildError so it can be corrected by hand later:
//
//	factory := ledger.NewFactory(mapper)
//	for _, expr := range compound.Exprs {
//	    factory.SetExpr(expr)
//	}
//	tx := factory.Build()
//	if tx.HasBuildError {
//	    // flag for review
//	}
package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/hyoubkp/ast"
)

// Entry is one side of a money movement.
type Entry struct {
	Account string
	Amount  ast.Price
}

// Transaction is the double-entry result of one expression line.
type Transaction struct {
	HasBuildError bool
	Date          ast.Date
	NumBase       uint32
	Description   string

	// OrigExpr is the raw expression text, kept only when requested.
	OrigExpr string

	DebitEntries  []Entry
	CreditEntries []Entry
}

// IsEmpty reports whether the transaction has no entries at all.
func (t *Transaction) IsEmpty() bool {
	return len(t.DebitEntries) == 0 && len(t.CreditEntries) == 0
}

// TotalDebit returns the sum of all debit entries.
func (t *Transaction) TotalDebit() ast.Price {
	var total ast.Price
	for _, e := range t.DebitEntries {
		total += e.Amount
	}
	return total
}

// TotalCredit returns the sum of all credit entries.
func (t *Transaction) TotalCredit() ast.Price {
	var total ast.Price
	for _, e := range t.CreditEntries {
		total += e.Amount
	}
	return total
}

// Imbalance returns total debits minus total credits. A well-formed
// transaction has an imbalance of zero.
func (t *Transaction) Imbalance() ast.Price {
	return t.TotalDebit().Sub(t.TotalCredit())
}

// IsBalanced reports whether debits and credits sum to the same amount.
func (t *Transaction) IsBalanced() bool {
	return t.Imbalance().IsZero()
}

// String renders the transaction in its canonical textual form, one line per
// field and entry, each line terminated by a newline:
//
//	Date: 2024-01-15, num base: 0
//	Transaction desc: 午饭
//	支出:用餐 debit 20.00
//	负债:信用卡:中行 1234 credit 20.00
func (t *Transaction) String() string {
	var b strings.Builder

	if t.OrigExpr != "" {
		fmt.Fprintf(&b, "Expression: %s\n", t.OrigExpr)
	}
	fmt.Fprintf(&b, "Date: %s, num base: %d\n", t.Date, t.NumBase)
	fmt.Fprintf(&b, "Transaction desc: %s\n", t.Description)
	for _, e := range t.DebitEntries {
		fmt.Fprintf(&b, "%s debit %s\n", e.Account, e.Amount)
	}
	for _, e := range t.CreditEntries {
		fmt.Fprintf(&b, "%s credit %s\n", e.Account, e.Amount)
	}

	return b.String()
}
