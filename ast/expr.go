// Package ast defines the values produced by the expression parser: the Price
// money type, calendar dates and the compound-expression tree built from one
// line of shorthand input such as "工行农行 20-5".
//
// A line is a CompoundExpr made of sub-expressions (Expr). Each sub-expression
// names its accounts and hints and carries one or more legs (ExprTrans):
//
//	工行农行 20-5 10@9 '午饭
//	\__/\__/ \__/ \__/  \__/
//	 credit   leg  leg  comment
//	    debit
package ast

// CompoundExpr is the parsed form of one input line.
type CompoundExpr struct {
	Exprs []*Expr

	// Comment holds the free text following a quote character, if any.
	Comment *string
}

// Expr is one sub-expression. Accounts[0] is the credit side and Accounts[1]
// the debit side; further account tokens are kept but not consulted when
// building transactions.
type Expr struct {
	Accounts []string
	Hints    []string
	Trans    []*ExprTrans
}

// IsEmpty reports whether the sub-expression has no accounts, hints or legs.
func (e *Expr) IsEmpty() bool {
	return len(e.Accounts) == 0 && len(e.Hints) == 0 && len(e.Trans) == 0
}

// CreditKind tells how a CreditPrice adjusts the running credit balance.
type CreditKind uint8

const (
	// Reward subtracts its amount from the running balance ("20-5").
	Reward CreditKind = iota
	// Credit replaces the running balance ("20@15"); the difference is the reward.
	Credit
)

func (k CreditKind) String() string {
	switch k {
	case Reward:
		return "Reward"
	case Credit:
		return "Credit"
	default:
		return "Unknown"
	}
}

// CreditPrice is one step of a leg's reward/credit chain.
type CreditPrice struct {
	Kind   CreditKind
	Amount Price
}

// ExprTrans is a leg: a debit amount optionally followed by a reward/credit
// chain, cashbacks and a multiplier.
//
//	20-5-5    debit 20, rewards 5 and 5
//	50@45-10  debit 50, credit 45 (reward 5), reward 10
//	+3        cashback only
//	12x3      three times debit 12
type ExprTrans struct {
	PriceDebit  Price
	CreditChain []CreditPrice
	CashBacks   []Price
	Multiple    uint32
}

// NewExprTrans returns an empty leg with a multiplier of one.
func NewExprTrans() *ExprTrans {
	return &ExprTrans{Multiple: 1}
}

// IsEmpty reports whether nothing has been recorded on the leg yet.
func (t *ExprTrans) IsEmpty() bool {
	return t.PriceDebit == 0 &&
		len(t.CreditChain) == 0 &&
		len(t.CashBacks) == 0 &&
		t.Multiple == 1
}

// IsCashbackOnly reports whether the leg only carries cashbacks.
func (t *ExprTrans) IsCashbackOnly() bool {
	return len(t.CashBacks) > 0 &&
		len(t.CreditChain) == 0 &&
		t.PriceDebit == 0
}

// IsValid reports whether the leg describes a usable money movement: it is
// not empty, it has a positive debit unless it is carried by cashbacks, and
// no reward or credit in the chain exceeds the running balance before it.
func (t *ExprTrans) IsValid() bool {
	if t.IsEmpty() {
		return false
	}

	if t.PriceDebit <= 0 && len(t.CashBacks) == 0 {
		return false
	}

	balance := t.PriceDebit
	for _, step := range t.CreditChain {
		if step.Amount > balance {
			return false
		}
		switch step.Kind {
		case Reward:
			balance = balance.Sub(step.Amount)
		case Credit:
			balance = step.Amount
		}
	}

	return true
}
