package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/observability"
)

// syncCommand pushes an owner's pending records to the remote mirror.
func syncCommand(settings *conf.Settings) *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload pending records to the remote store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := newSyncEngine(settings, store, observability.NewMetrics())
			synced, err := engine.SyncOwner(cmd.Context(), ownerID)
			if err != nil {
				return err
			}

			if synced == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to sync")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d records\n", synced)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "owner id")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
