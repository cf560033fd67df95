package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/tokmap"
)

// OptionsCmd prints every token mapper option with the mappers supporting it.
type OptionsCmd struct{}

func (cmd *OptionsCmd) Run(ctx *kong.Context) error {
	for _, opt := range ledger.Options() {
		var supported []string
		for _, kind := range tokmap.Kinds() {
			if kind.SupportsOption(opt) {
				supported = append(supported, string(kind))
			}
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "-T %s [supported by: %s]\n", opt.Description(), strings.Join(supported, ", "))
	}
	return nil
}
