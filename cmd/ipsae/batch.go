package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BurntSushi/ipsae/batch"
	"github.com/BurntSushi/ipsae/cmd/util"
)

var batchPairs string

var batchCmd = &cobra.Command{
	Use:   "batch [STRUCTURE:PAE ...]",
	Short: "Score many structures in parallel",
	Long: `Score many structure and PAE pairs in parallel.

Pairs are given as STRUCTURE:PAE arguments, or one per line in the file
named by --pairs (either "STRUCTURE PAE" or "STRUCTURE:PAE"; blank lines
and lines starting with '#' are ignored).

Each result is written to <out-dir>/<stem>_<pae cutoff>_<dist cutoff>.json,
where stem is the structure file name without its extension. A failing
pair is reported and does not stop the others.

Examples:
  ipsae batch --out-dir results a.pdb:a.json b.pdb:b.json
  ipsae batch --pairs pairs.txt --workers 8`,
	RunE: runBatch,
}

func init() {
	flags := batchCmd.Flags()
	flags.StringVar(&batchPairs, "pairs", "", "File listing structure and PAE pairs")
	flags.String("out-dir", ".", "Directory for the result files")
	flags.Int("workers", 0, "Maximum number of pairs scored at once (default: number of CPUs)")

	bind(flags.Lookup("out-dir"), "output_dir")
	bind(flags.Lookup("workers"), "workers")
}

func runBatch(cmd *cobra.Command, args []string) error {
	jobs, err := batchJobs(args)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no structure and PAE pairs given")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := batch.Run(ctx, jobs, batch.Options{
		Cutoffs: cfg.Cutoffs(),
		Workers: cfg.Workers,
		Loader:  newLoader(log),
		Log:     log,
	})
	if err != nil && len(results) == 0 {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "FAILED %s: %s\n", res.Job, res.Err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Job.Output)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pairs failed", failed, len(results))
	}
	return nil
}

// batchJobs collects the jobs from the pairs file and the arguments and
// assigns each its output file.
func batchJobs(args []string) ([]batch.Job, error) {
	var jobs []batch.Job
	if batchPairs != "" {
		f, err := util.OpenFile(batchPairs)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if jobs, err = util.ReadPairs(f); err != nil {
			return nil, fmt.Errorf("%s: %w", batchPairs, err)
		}
	}
	for _, arg := range args {
		job, err := util.ParsePair(arg)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}
	owners := make(map[string]string, len(jobs))
	for i := range jobs {
		out := util.OutputName(cfg.OutputDir, jobs[i].Structure, cfg.Cutoffs())
		if prev, ok := owners[out]; ok {
			return nil, fmt.Errorf(
				"'%s' and '%s' would both be written to '%s'",
				prev, jobs[i].Structure, out)
		}
		owners[out] = jobs[i].Structure
		jobs[i].Output = out
	}
	return jobs, nil
}
