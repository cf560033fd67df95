package rules

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Names of the rulesets every document must declare.
const (
	MainRuleset   = "main"
	RewardRuleset = "reward"
)

// CheckTarget selects which raw token an entry's check list is compared with.
type CheckTarget uint8

const (
	CheckNone CheckTarget = iota
	CheckDebit
	CheckCredit
	CheckOpposite
)

func (c CheckTarget) String() string {
	switch c {
	case CheckDebit:
		return "debit"
	case CheckCredit:
		return "credit"
	case CheckOpposite:
		return "opposite"
	default:
		return "none"
	}
}

// CookedEntry is a compiled rule entry ready for matching.
type CookedEntry struct {
	Side      Side
	Hints     []string
	Target    CheckTarget
	CheckList []string
	Account   string
}

// CookedRule is a compiled rule document.
type CookedRule struct {
	Fallback string

	// Accounts lists every account token the parser has to recognize, sorted.
	Accounts []string
	Hints    []string

	// Tags maps a tag to the account tokens carrying it.
	Tags map[string][]string

	// Main holds the entries of the main ruleset by account token.
	Main   map[string][]CookedEntry
	Reward []CookedEntry
}

// Compile expands imports and tags of doc and indexes the main ruleset.
func Compile(doc *Document) (*CookedRule, error) {
	if doc.Fallback == "" {
		return nil, &RuleError{Index: -1, Message: "'fallback' is required", Underlying: ErrMissingFallback}
	}

	c := &compiler{doc: doc}
	rule := &CookedRule{
		Fallback: doc.Fallback,
		Hints:    append([]string(nil), doc.Hints...),
		Tags:     make(map[string][]string),
		Main:     make(map[string][]CookedEntry),
	}

	accounts := make(map[string]struct{})
	for _, account := range sortedKeys(doc.Tags) {
		accounts[account] = struct{}{}
		for _, tag := range doc.Tags[account] {
			rule.Tags[tag] = append(rule.Tags[tag], account)
		}
	}
	c.tags = rule.Tags

	main, err := c.cook(MainRuleset)
	if err != nil {
		return nil, err
	}
	for _, e := range main {
		// Entries without a token can never be reached from the main ruleset.
		for _, token := range e.tokens {
			rule.Main[token] = append(rule.Main[token], e.CookedEntry)
			accounts[token] = struct{}{}
			for _, tok := range e.CheckList {
				accounts[tok] = struct{}{}
			}
		}
	}

	reward, err := c.cook(RewardRuleset)
	if err != nil {
		return nil, err
	}
	for _, e := range reward {
		rule.Reward = append(rule.Reward, e.CookedEntry)
		for _, tok := range e.CheckList {
			accounts[tok] = struct{}{}
		}
	}

	rule.Accounts = maps.Keys(accounts)
	slices.Sort(rule.Accounts)

	return rule, nil
}

type compiler struct {
	doc  *Document
	tags map[string][]string
}

type tokenEntry struct {
	CookedEntry
	tokens []string
}

func (c *compiler) cook(name string) ([]tokenEntry, error) {
	entries, err := c.collect(name, nil)
	if err != nil {
		return nil, err
	}

	out := make([]tokenEntry, 0, len(entries))
	for i, e := range entries {
		if e.Account == "" {
			return nil, &RuleError{Ruleset: name, Index: i, Message: "either 'account' or 'import' is required", Underlying: ErrMissingAccount}
		}

		set := 0
		for _, list := range []Many{e.Opposite, e.Credit, e.Debit} {
			if len(list) > 0 {
				set++
			}
		}
		if set > 1 {
			return nil, &RuleError{Ruleset: name, Index: i, Message: "'opposite', 'debit' and 'credit' conflict with each other", Underlying: ErrConflictingChecks}
		}

		cooked := CookedEntry{
			Side:    e.Side,
			Hints:   append([]string(nil), e.Hint...),
			Account: e.Account,
		}

		var list Many
		switch {
		case len(e.Opposite) > 0:
			cooked.Target, list = CheckOpposite, e.Opposite
		case len(e.Credit) > 0:
			cooked.Target, list = CheckCredit, e.Credit
		case len(e.Debit) > 0:
			cooked.Target, list = CheckDebit, e.Debit
		}

		cooked.CheckList, err = c.expandTags(list)
		if err != nil {
			return nil, &RuleError{Ruleset: name, Index: i, Message: err.Error(), Underlying: ErrUnknownTag}
		}

		out = append(out, tokenEntry{CookedEntry: cooked, tokens: e.Token})
	}

	return out, nil
}

// collect returns the entries of the named ruleset with imports spliced in.
func (c *compiler) collect(name string, stack []string) ([]Entry, error) {
	if slices.Contains(stack, name) {
		chain := strings.Join(append(slices.Clip(stack), name), " -> ")
		return nil, &RuleError{Ruleset: name, Index: -1, Message: "import cycle " + chain, Underlying: ErrImportCycle}
	}

	entries, ok := c.doc.Ruleset[name]
	if !ok {
		return nil, &RuleError{Ruleset: name, Index: -1, Message: "ruleset is required", Underlying: ErrMissingRuleset}
	}
	stack = append(slices.Clip(stack), name)

	var out []Entry
	for _, e := range entries {
		if len(e.Import) == 0 {
			out = append(out, e.clone())
			continue
		}

		imported, err := c.collect(e.Import[0], stack)
		if err != nil {
			return nil, err
		}

		args := e.Import[1:]
		for _, r := range imported {
			out = append(out, override(r, e, args))
		}
	}

	return out, nil
}

// override applies the non-empty fields of the importing entry to r and
// substitutes "$N" placeholders with args.
func override(r, importer Entry, args []string) Entry {
	if len(importer.Token) > 0 {
		r.Token = append(Many(nil), importer.Token...)
	}
	if importer.Side != AnySide {
		r.Side = importer.Side
	}
	if len(importer.Hint) > 0 {
		r.Hint = append(Many(nil), importer.Hint...)
	}
	if len(importer.Opposite) > 0 {
		r.Opposite = append(Many(nil), importer.Opposite...)
	}
	if len(importer.Debit) > 0 {
		r.Debit = append(Many(nil), importer.Debit...)
	}
	if len(importer.Credit) > 0 {
		r.Credit = append(Many(nil), importer.Credit...)
	}
	if importer.Account != "" {
		r.Account = importer.Account
	}

	r.Account = substitute(r.Account, args)
	for _, list := range []Many{r.Hint, r.Opposite, r.Debit, r.Credit} {
		for i := range list {
			list[i] = substitute(list[i], args)
		}
	}

	return r
}

// substitute replaces a whole-string "$N" placeholder with args[N-1].
func substitute(s string, args []string) string {
	if !strings.HasPrefix(s, "$") {
		return s
	}
	idx, err := strconv.Atoi(s[1:])
	if err != nil || idx < 1 || idx > len(args) {
		return s
	}
	return args[idx-1]
}

func (c *compiler) expandTags(list Many) ([]string, error) {
	if len(list) == 0 {
		return nil, nil
	}

	set := make(map[string]struct{}, len(list))
	for _, item := range list {
		tag, isTag := strings.CutPrefix(item, "#")
		if !isTag {
			set[item] = struct{}{}
			continue
		}

		accounts, ok := c.tags[tag]
		if !ok {
			return nil, fmt.Errorf("no account marked tag %q", tag)
		}
		for _, a := range accounts {
			set[a] = struct{}{}
		}
	}

	out := maps.Keys(set)
	slices.Sort(out)
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
