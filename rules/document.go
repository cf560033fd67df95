// Package rules implements a declarative TokenMapper driven by a YAML rule
// document.
//
// A rule document declares the fallback account, the hint tokens, account
// tags and named rulesets:
//
//	fallback: 不平衡的-CNY
//	hints: [还款, 储蓄卡]
//	tags:
//	  用餐: [expense]
//	ruleset:
//	  main:
//	    - token: 中行
//	      side: credit
//	      hint: 储蓄卡
//	      account: 资产:银行:BOC 中国银行
//	    - token: 中行
//	      account: 负债:信用卡:中行 1234
//	  reward:
//	    - debit: "#expense"
//	      account: 收入:优惠或礼遇
//	    - account: 收入:优惠券变现
//
// The "main" ruleset is indexed by account token and resolves accounts; the
// "reward" ruleset is evaluated in order whenever a reward or cashback needs
// an account. Entries may import other rulesets, overriding fields and filling
// "$N" placeholders from the import arguments.
package rules

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Side restricts an entry to one side of the transaction.
type Side uint8

const (
	// AnySide matches regardless of the side being resolved.
	AnySide Side = iota
	// DebitSide matches only while the debit account is resolved.
	DebitSide
	// CreditSide matches only while the credit account is resolved.
	CreditSide
)

func (s Side) String() string {
	switch s {
	case DebitSide:
		return "debit"
	case CreditSide:
		return "credit"
	default:
		return "any"
	}
}

// UnmarshalYAML accepts "debit" or "credit" in any letter case.
func (s *Side) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch strings.ToLower(raw) {
	case "debit":
		*s = DebitSide
	case "credit":
		*s = CreditSide
	case "":
		*s = AnySide
	default:
		return fmt.Errorf("line %d: unknown side %q, expected debit or credit", value.Line, raw)
	}
	return nil
}

// Many is a list of strings that may be written as a single scalar.
type Many []string

// UnmarshalYAML decodes either a scalar or a sequence of scalars.
func (m *Many) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*m = nil
			return nil
		}
		*m = Many{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*m = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// Entry is one rule of a ruleset as written in the document.
type Entry struct {
	Token    Many     `yaml:"token"`
	Side     Side     `yaml:"side"`
	Hint     Many     `yaml:"hint"`
	Opposite Many     `yaml:"opposite"`
	Debit    Many     `yaml:"debit"`
	Credit   Many     `yaml:"credit"`
	Account  string   `yaml:"account"`
	Import   []string `yaml:"import"`
}

func (e Entry) clone() Entry {
	c := e
	c.Token = append(Many(nil), e.Token...)
	c.Hint = append(Many(nil), e.Hint...)
	c.Opposite = append(Many(nil), e.Opposite...)
	c.Debit = append(Many(nil), e.Debit...)
	c.Credit = append(Many(nil), e.Credit...)
	c.Import = append([]string(nil), e.Import...)
	return c
}

// Document is a decoded rule document.
type Document struct {
	Fallback string   `yaml:"fallback"`
	Hints    []string `yaml:"hints"`

	// Tags maps an account token to the tags it carries.
	Tags map[string][]string `yaml:"tags"`

	Ruleset map[string][]Entry `yaml:"ruleset"`

	// Include lists further documents merged by the loader.
	Include []string `yaml:"include"`
}

// Decode reads a rule document. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("failed to parse rule document: %w", err)
	}
	return &doc, nil
}
