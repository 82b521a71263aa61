package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BurntSushi/ipsae/loader"
	"github.com/BurntSushi/ipsae/pdb"
)

var chainsFilter []string

var chainsCmd = &cobra.Command{
	Use:   "chains STRUCTURE",
	Short: "List the chains of a structure with their sequences",
	Long: `List every chain of a structure as it will be scored: its identifier,
first and last residue number, length and one letter sequence read from
the carbon-alpha atoms of the first model.

Examples:
  ipsae chains model.pdb
  ipsae chains --chain A,C fold.cif.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runChains,
}

func init() {
	chainsCmd.Flags().StringSliceVar(&chainsFilter, "chain", nil, "Only list these chain identifiers")
}

func runChains(cmd *cobra.Command, args []string) error {
	entry, err := loader.ReadStructure(args[0])
	if err != nil {
		return err
	}

	chains := entry.Chains
	if len(chainsFilter) > 0 {
		chains = make([]*pdb.Chain, 0, len(chainsFilter))
		for _, ident := range chainsFilter {
			chain := entry.Chain(ident)
			if chain == nil {
				return fmt.Errorf("'%s' has no chain '%s'; chains: %s",
					args[0], ident, idents(entry))
			}
			chains = append(chains, chain)
		}
	}
	for _, chain := range chains {
		fmt.Fprintln(cmd.OutOrStdout(), chain)
	}
	return nil
}

func idents(entry *pdb.Entry) string {
	ids := make([]string, len(entry.Chains))
	for i, c := range entry.Chains {
		ids[i] = c.Ident
	}
	return strings.Join(ids, ", ")
}
