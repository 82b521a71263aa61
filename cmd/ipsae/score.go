package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BurntSushi/ipsae/cmd/util"
	"github.com/BurntSushi/ipsae/ipsae"
)

var scoreOutput string

var scoreCmd = &cobra.Command{
	Use:   "score STRUCTURE PAE",
	Short: "Score one structure and write the results as JSON",
	Long: `Score one structure with its PAE matrix.

The JSON results go to standard output unless --output is given.

Examples:
  ipsae score model.pdb model_pae.json
  ipsae score --pae-cutoff 15 fold.cif.gz fold.npz -o fold_scores.json`,
	Args: cobra.ExactArgs(2),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreOutput, "output", "o", "", "Output file (default: standard output)")
}

func runScore(cmd *cobra.Command, args []string) error {
	log := log.With(zap.String("run_id", uuid.New().String()))

	ds, err := newLoader(log).Load(args[0], args[1])
	if err != nil {
		return err
	}
	rs, err := ipsae.NewScorer(cfg.Cutoffs(), log).Run(ds)
	if err != nil {
		return err
	}

	if scoreOutput == "" {
		w := bufio.NewWriter(cmd.OutOrStdout())
		if err := rs.WriteJSON(w); err != nil {
			return err
		}
		return w.Flush()
	}

	if err := writeOutput(scoreOutput, rs); err != nil {
		return err
	}
	log.Info("wrote results", zap.String("output", scoreOutput))
	return nil
}

// writeOutput writes the results to fileName. The file is removed again if
// any part of the write fails.
func writeOutput(fileName string, rs *ipsae.ResultSet) error {
	f, err := util.CreateFile(fileName)
	if err != nil {
		return err
	}
	if err := writeFile(f, rs); err != nil {
		os.Remove(fileName)
		return fmt.Errorf("could not write '%s': %w", fileName, err)
	}
	return nil
}

// writeFile writes the results to f and closes it.
func writeFile(f *os.File, rs *ipsae.ResultSet) error {
	w := bufio.NewWriter(f)
	if err := rs.WriteJSON(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
