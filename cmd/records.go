package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/observability"
)

// recordsCommand groups the record inspection and deletion commands.
func recordsCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage stored measurement records",
	}
	cmd.AddCommand(
		recordsListCommand(settings),
		recordsLatestCommand(settings),
		recordsDeleteCommand(settings),
	)
	return cmd
}

func recordsListCommand(settings *conf.Settings) *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's records, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.RecordsByOwner(ownerID)
			if err != nil {
				return err
			}

			for i := range records {
				r := &records[i]
				status := "pending"
				if r.Synced {
					status = "synced"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tcount=%d\tbiomass=%.2f\tfeed=%.2f\t%s\t%s\n",
					r.ID, r.CreatedAt, r.ShrimpCount, r.Biomass, r.FeedMeasurement, status, r.RecordID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "owner id")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func recordsLatestCommand(settings *conf.Settings) *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent record, any owner unless one is given",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			r, err := store.LatestRecord(ownerID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tcount=%d\tbiomass=%.2f\tfeed=%.2f\towner=%s\n",
				r.ID, r.CreatedAt, r.ShrimpCount, r.Biomass, r.FeedMeasurement, r.OwnerID)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "restrict to one owner")
	return cmd
}

func recordsDeleteCommand(settings *conf.Settings) *cobra.Command {
	var (
		ownerID string
		localID uint
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a record locally and best-effort on the remote mirror",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := newSyncEngine(settings, store, observability.NewMetrics())
			result, err := engine.Delete(cmd.Context(), localID, ownerID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted record %s\n", result.RecordID)
			if result.RemoteAttempted && !result.RemoteMatched {
				fmt.Fprintln(cmd.OutOrStdout(), "remote mirror had no matching document")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "owner id")
	cmd.Flags().UintVar(&localID, "id", 0, "local record id")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
