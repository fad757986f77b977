package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridex/internal/config"
	logpkg "github.com/kailas-cloud/hybridex/internal/logger"
	"github.com/kailas-cloud/hybridex/internal/version"
)

// globalFlags are shared by every subcommand that touches storage.
type globalFlags struct {
	env        string
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "hybridex",
		Short: "Namespaced hybrid search over Redis and Valkey",
		Long: `hybridex stores short text documents in isolated namespaces and answers
queries by fusing vector similarity with lexical relevance, optionally
reordered by an external reranking model.

Run 'hybridex serve' to start the HTTP API.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("hybridex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "Environment name, selects config/<env>.yaml")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Explicit path to a YAML config file")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newInitCmd(flags))
	cmd.AddCommand(newResetCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load reads the configuration selected by the global flags and builds a logger for it.
func (f *globalFlags) load() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(f.env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(f.env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
