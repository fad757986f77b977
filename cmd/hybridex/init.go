package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

func newInitCmd(flags *globalFlags) *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create namespace indexes ahead of the first write",
		Long: `init registers the given namespaces and creates their search indexes.
Namespaces that already exist are left untouched, so the command is safe to re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, store, logger)
			if err != nil {
				store.Close()
				return err
			}
			defer a.Close()

			for _, name := range names {
				created, err := a.namespaces.Ensure(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("init namespace %q: %w", name, err)
				}
				state := "exists"
				if created {
					state = "created"
				}
				logger.Info("Namespace ready", zap.String("namespace", name), zap.Bool("created", created))
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, state)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&names, "namespace", "n", []string{domns.Default}, "Namespaces to create")

	return cmd
}
