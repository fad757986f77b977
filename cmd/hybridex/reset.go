package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errResetNotConfirmed = errors.New("reset deletes every namespace and document; re-run with --yes to confirm")

func newResetCmd(flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Destroy every namespace, index and document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errResetNotConfirmed
			}

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

			deleted, err := a.namespaces.DestroyAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			logger.Warn("All namespaces destroyed", zap.Int("deleted_documents", deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d documents\n", deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the destructive reset")

	return cmd
}
