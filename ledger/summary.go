package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Summary accumulates the entries of many transactions into per-account
// balances. Debits count positive and credits negative, so the balances of a
// session's balanced transactions sum to zero.
type Summary struct {
	balances     map[string]decimal.Decimal
	transactions int
	flagged      int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{balances: make(map[string]decimal.Decimal)}
}

// Add records every entry of tx.
func (s *Summary) Add(tx *Transaction) {
	s.transactions++
	if tx.HasBuildError {
		s.flagged++
	}

	for _, e := range tx.DebitEntries {
		s.balances[e.Account] = s.balances[e.Account].Add(e.Amount.Decimal())
	}
	for _, e := range tx.CreditEntries {
		s.balances[e.Account] = s.balances[e.Account].Sub(e.Amount.Decimal())
	}
}

// Transactions returns the number of transactions added.
func (s *Summary) Transactions() int {
	return s.transactions
}

// Flagged returns the number of added transactions with a build error.
func (s *Summary) Flagged() int {
	return s.flagged
}

// Balance returns the balance of a single account.
func (s *Summary) Balance(account string) decimal.Decimal {
	return s.balances[account]
}

// Accounts returns every account seen, sorted.
func (s *Summary) Accounts() []string {
	accounts := maps.Keys(s.balances)
	slices.Sort(accounts)
	return accounts
}

// Total returns the sum of all balances.
func (s *Summary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.balances {
		total = total.Add(b)
	}
	return total
}

// BalanceNode is one node of the account hierarchy built by Tree.
type BalanceNode struct {
	// Name is the last segment of the account path, e.g. "银行" for "资产:银行".
	Name string

	// Account is the full account path up to this node.
	Account string

	// Depth is 0 for top-level segments such as "资产" or "负债".
	Depth int

	// Balance is the aggregated balance for this node and all descendants.
	Balance decimal.Decimal

	// Children contains direct child nodes, sorted by name.
	Children []*BalanceNode
}

// Tree arranges the balances by their colon-separated account paths.
// Parent nodes aggregate the balances of all their descendants.
func (s *Summary) Tree() []*BalanceNode {
	index := make(map[string]*BalanceNode)
	var roots []*BalanceNode

	for _, account := range s.Accounts() {
		amount := s.balances[account]
		segments := strings.Split(account, ":")

		var parent *BalanceNode
		for depth := range segments {
			path := strings.Join(segments[:depth+1], ":")
			node, ok := index[path]
			if !ok {
				node = &BalanceNode{Name: segments[depth], Account: path, Depth: depth}
				index[path] = node
				if parent == nil {
					roots = append(roots, node)
				} else {
					parent.Children = append(parent.Children, node)
				}
			}
			node.Balance = node.Balance.Add(amount)
			parent = node
		}
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*BalanceNode) {
	slices.SortFunc(nodes, func(a, b *BalanceNode) int {
		return strings.Compare(a.Name, b.Name)
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Walk visits the nodes depth-first, parents before children.
func Walk(nodes []*BalanceNode, fn func(*BalanceNode)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Children, fn)
	}
}
