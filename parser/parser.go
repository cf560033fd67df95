// Package parser turns one line of shorthand bookkeeping input into an
// ast.CompoundExpr.
//
// The parser is a single-pass state machine over the runes of the line. It
// alternates between scanning account and hint tokens, which are recognized
// by walking a Trie of registered tokens, and scanning price legs:
//
//	工行农行 20-5 10@9x2 ；农行 10 '午饭
//
// A Parser carries scan state between runes and is therefore not safe for
// concurrent use; create one Parser per goroutine.
package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/robinvdvleuten/hyoubkp/ast"
)

type scanMode uint8

const (
	modeAccountOrHint scanMode = iota
	modePrice
)

// priceState is the part of a leg the next price literal belongs to.
type priceState uint8

const (
	stateDebit priceState = 1 << iota
	stateCredit
	stateReward
	stateShares
	stateMultiple
	stateCashback
)

// maxMultiple bounds the entries a single leg can replicate into.
const maxMultiple = 1000

const (
	reentrantStates = stateCredit | stateReward | stateCashback
	allStates       = stateDebit | stateCredit | stateReward | stateShares | stateMultiple | stateCashback
)

func (s priceState) String() string {
	switch s {
	case stateDebit:
		return "debit"
	case stateCredit:
		return "credit"
	case stateReward:
		return "reward"
	case stateShares:
		return "shares"
	case stateMultiple:
		return "multiple"
	case stateCashback:
		return "cashback"
	default:
		return fmt.Sprintf("priceState(%d)", uint8(s))
	}
}

type scanState struct {
	line string
	ch   rune
	pos  int

	mode    scanMode
	cursor  NodeID
	pstate  priceState
	visited priceState
	staging []byte

	result *ast.CompoundExpr
	expr   *ast.Expr
	trans  *ast.ExprTrans

	// Accounts carried over from the previous sub-expression, used when the
	// next one names fewer than two accounts.
	weakCredit string
	weakDebit  string
}

// Parser parses expression lines against a fixed set of account and hint
// tokens.
type Parser struct {
	trie     *Trie
	interner *Interner
	state    scanState
}

// New creates a parser recognizing the given tokens. Hint tokens are fed
// after account tokens, so a token registered as both is treated as a hint.
func New(accountTokens, hintTokens []string) *Parser {
	trie := NewTrie()
	interner := NewInterner(len(accountTokens) + len(hintTokens))

	for _, tok := range accountTokens {
		trie.Feed(interner.Intern(tok), AccountToken)
	}
	for _, tok := range hintTokens {
		trie.Feed(interner.Intern(tok), HintToken)
	}

	return &Parser{trie: trie, interner: interner}
}

// Trie returns the token trie the parser scans with.
func (p *Parser) Trie() *Trie {
	return p.trie
}

// Parse parses one expression line. The returned error, if any, is a
// *ParseError locating the offending character within line.
//
// Text following a quote character (' ‘ or ’) is taken as the comment and
// ends the expression.
func (p *Parser) Parse(line string) (*ast.CompoundExpr, error) {
	p.reset(line)
	s := &p.state

	stopped := false
	for pos, ch := range line {
		stop, err := p.step(pos, ch)
		if err != nil {
			return nil, err
		}
		if stop {
			stopped = true
			break
		}
	}

	if !stopped {
		// End of line behaves like trailing whitespace.
		if _, err := p.step(len(line), 0); err != nil {
			return nil, err
		}
	}

	if !s.expr.IsEmpty() {
		s.result.Exprs = append(s.result.Exprs, s.expr)
	}

	return s.result, nil
}

func (p *Parser) reset(line string) {
	p.state = scanState{
		line:    line,
		staging: p.state.staging[:0],
		result:  &ast.CompoundExpr{},
		expr:    &ast.Expr{},
		trans:   ast.NewExprTrans(),
	}
	p.beginAccountOrHint(0, false)
}

func (p *Parser) step(pos int, ch rune) (bool, error) {
	s := &p.state
	s.ch, s.pos = ch, pos

	switch ch {
	case ' ', '\t', 0:
		return false, p.flush()
	case '\'', '‘', '’':
		rest := pos + utf8.RuneLen(ch)
		if rest >= len(s.line) {
			return false, nil
		}
		if err := p.flush(); err != nil {
			return false, err
		}
		comment := s.line[rest:]
		s.result.Comment = &comment
		return true, nil
	}

	switch s.mode {
	case modeAccountOrHint:
		return false, p.scanAccountOrHint(ch)
	default:
		return false, p.scanPrice(ch)
	}
}

// flush finalizes whatever is staged, as whitespace does.
func (p *Parser) flush() error {
	s := &p.state

	switch s.mode {
	case modeAccountOrHint:
		if len(s.staging) > 0 {
			return p.popToken()
		}
	case modePrice:
		if len(s.staging) > 0 {
			if err := p.popPrice(); err != nil {
				return err
			}
			s.expr.Trans = append(s.expr.Trans, s.trans)
			s.trans = ast.NewExprTrans()
		}
		s.visited = 0
		return p.changeState(stateDebit)
	}

	return nil
}

func (p *Parser) scanAccountOrHint(ch rune) error {
	s := &p.state

	if next, ok := p.trie.Find(s.cursor, ch); ok {
		s.staging = utf8.AppendRune(s.staging, ch)
		s.cursor = next
		return nil
	}

	if len(s.staging) > 0 {
		if err := p.popToken(); err != nil {
			return err
		}
	}

	if isDigit(ch) || ch == '+' {
		if len(s.expr.Accounts) <= 1 && s.weakCredit != "" {
			s.expr.Accounts = append([]string{s.weakCredit}, s.expr.Accounts...)
		}
		if len(s.expr.Accounts) <= 1 && s.weakDebit != "" {
			s.expr.Accounts = append(s.expr.Accounts, s.weakDebit)
		}

		s.mode = modePrice
		s.visited = 0
		if err := p.changeState(stateDebit); err != nil {
			return err
		}
		s.staging = utf8.AppendRune(s.staging, ch)
		return nil
	}

	if !p.beginAccountOrHint(ch, true) {
		return p.errorf("next account or hint begins with an unknown token")
	}
	return nil
}

func (p *Parser) scanPrice(ch rune) error {
	s := &p.state

	if isDigit(ch) || ch == '.' {
		s.staging = utf8.AppendRune(s.staging, ch)
		return nil
	}

	if len(s.staging) > 0 {
		if err := p.popPrice(); err != nil {
			return err
		}
	}

	switch ch {
	case '-':
		return p.changeState(stateReward)
	case '@':
		return p.changeState(stateCredit)
	case 'x', '*':
		return p.changeState(stateMultiple)
	case '/':
		return p.wrapf(ErrUnsupported, "shares notation is not supported")
	case '+':
		return p.changeState(stateCashback)
	}

	accounts := s.expr.Accounts
	switch {
	case len(accounts) >= 2 && isCreditSeparator(ch):
		s.weakCredit = accounts[1]
	case len(accounts) >= 2 && isDebitSeparator(ch):
		s.weakDebit = accounts[1]
	case len(accounts) >= 1:
		s.weakCredit = accounts[0]
	}

	if !s.trans.IsEmpty() {
		s.expr.Trans = append(s.expr.Trans, s.trans)
		s.trans = ast.NewExprTrans()
	}
	s.result.Exprs = append(s.result.Exprs, s.expr)
	s.expr = &ast.Expr{}

	var ok bool
	if isCreditSeparator(ch) || isDebitSeparator(ch) {
		ok = p.beginAccountOrHint(0, false)
	} else {
		ok = p.beginAccountOrHint(ch, true)
	}
	if !ok {
		return p.errorf("sub-expression begins with an unknown token")
	}
	return nil
}

func (p *Parser) beginAccountOrHint(ch rune, hasCh bool) bool {
	s := &p.state
	s.mode = modeAccountOrHint
	s.cursor = Root

	if !hasCh {
		return true
	}

	next, ok := p.trie.Find(Root, ch)
	if !ok {
		return false
	}
	s.staging = utf8.AppendRune(s.staging, ch)
	s.cursor = next
	return true
}

func (p *Parser) popToken() error {
	s := &p.state
	token := p.interner.InternBytes(s.staging)

	switch p.trie.Kind(s.cursor) {
	case AccountToken:
		s.expr.Accounts = append(s.expr.Accounts, token)
	case HintToken:
		s.expr.Hints = append(s.expr.Hints, token)
	default:
		return p.errorf("token %q is not a known account or hint", token)
	}

	s.staging = s.staging[:0]
	s.cursor = Root
	return nil
}

func (p *Parser) popPrice() error {
	s := &p.state
	text := string(s.staging)

	value, err := ast.ParsePrice(text)
	if err != nil {
		return p.wrapf(err, "can not parse price %q", text)
	}

	switch s.pstate {
	case stateDebit:
		s.trans.PriceDebit = value
	case stateCredit:
		s.trans.CreditChain = append(s.trans.CreditChain, ast.CreditPrice{Kind: ast.Credit, Amount: value})
	case stateReward:
		s.trans.CreditChain = append(s.trans.CreditChain, ast.CreditPrice{Kind: ast.Reward, Amount: value})
	case stateMultiple:
		if value.FractionalPart() != 0 {
			return p.errorf("multiple must be an integer, but current is %q", text)
		}
		if value.IntegerPart() > maxMultiple {
			return p.errorf("multiple %q is too large", text)
		}
		s.trans.Multiple = uint32(value.IntegerPart())
	case stateCashback:
		s.trans.CashBacks = append(s.trans.CashBacks, value)
	}

	s.staging = s.staging[:0]
	return nil
}

// changeState enters a price sub-state. Credit and reward may alternate and
// repeat; cashback may repeat but closes every other sub-state of the leg.
func (p *Parser) changeState(next priceState) error {
	s := &p.state

	if reentrantStates&next == 0 && s.visited&next != 0 {
		return p.errorf("%s part, or a part conflicting with it, was already given for this leg", next)
	}

	s.pstate = next
	s.visited |= next

	switch next {
	case stateCredit:
		s.visited |= stateReward
	case stateReward:
		s.visited |= stateCredit
	case stateCashback:
		s.visited |= allStates
	}

	return nil
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	s := &p.state
	return NewParseError(s.line, s.ch, s.pos, fmt.Sprintf(format, args...))
}

func (p *Parser) wrapf(err error, format string, args ...any) *ParseError {
	pe := p.errorf(format, args...)
	pe.Underlying = err
	return pe
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isCreditSeparator(ch rune) bool {
	return ch == ',' || ch == '，'
}

func isDebitSeparator(ch rune) bool {
	return ch == ';' || ch == '；'
}
