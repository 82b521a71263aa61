package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/BurntSushi/ipsae/config"
	"github.com/BurntSushi/ipsae/ipsae"
	"github.com/BurntSushi/ipsae/loader"
	"github.com/BurntSushi/ipsae/logger"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	v          = viper.New()
	configFile string

	cfg *config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ipsae",
	Short: "Score protein-protein interfaces with ipSAE, pDockQ and LIS",
	Long: `ipsae scores predicted protein complexes from a structure file (PDB or
mmCIF) and its predicted aligned error matrix (JSON or NPZ).

Results are written as JSON with chain pair scores, per-residue scores
and the structure data they were computed from.

Settings are read from flags, IPSAE_* environment variables and an
optional ipsae.yaml file, in that order of precedence.

Example:
  ipsae score model.pdb model_pae.json -o scores.json
  ipsae --dist-cutoff 10 batch --out-dir results a.cif:a.json b.cif:b.json
  ipsae batch --pairs pairs.txt --workers 8`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: search for ipsae.yaml)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "console", "Log format: console or json")
	flags.Float64("pae-cutoff", ipsae.DefaultCutoffs.PAE, "PAE cutoff in Angstroms")
	flags.Float64("dist-cutoff", ipsae.DefaultCutoffs.Distance, "Distance cutoff in Angstroms")

	bind(flags.Lookup("log-level"), "log_level")
	bind(flags.Lookup("log-format"), "log_format")
	bind(flags.Lookup("pae-cutoff"), "pae_cutoff")
	bind(flags.Lookup("dist-cutoff"), "distance_cutoff")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(chainsCmd)
}

// setup loads the configuration and builds the logger before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(v, configFile); err != nil {
		return err
	}
	if log, err = logger.New(cfg.Logger()); err != nil {
		return err
	}
	log.Debug("configuration loaded",
		zap.String("config_file", v.ConfigFileUsed()),
		zap.Float64("pae_cutoff", cfg.PAECutoff),
		zap.Float64("distance_cutoff", cfg.DistanceCutoff))
	return nil
}

// newLoader returns a loader that accepts the configured PAE keys.
func newLoader(log *zap.Logger) *loader.Loader {
	l := loader.New(log)
	l.PAE.Keys = cfg.PAEKeys
	return l
}
