package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/detector"
	"github.com/aquasense/shrimpscale/internal/feed"
	"github.com/aquasense/shrimpscale/internal/frame"
	"github.com/aquasense/shrimpscale/internal/observability"
	"github.com/aquasense/shrimpscale/internal/session"
)

// measureCommand runs one measurement session over a directory of frames.
func measureCommand(settings *conf.Settings) *cobra.Command {
	var (
		sourceDir string
		loop      bool
		duration  time.Duration
		ownerID   string
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Run a measurement session over captured frames",
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, err := frame.NewDirectorySource(sourceDir, loop)
			if err != nil {
				return err
			}
			defer func() { _ = source.Release() }()

			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			metrics := observability.NewMetrics()
			counter := detector.New(&settings.Detector, metrics)
			if counter.Disabled() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: detection model unavailable, counting is disabled")
			}

			sess := session.New(source, counter, feed.Default(), store,
				settings.Detector.Interval, metrics)

			if err := sess.Start(); err != nil {
				return err
			}

			select {
			case <-time.After(duration):
			case <-cmd.Context().Done():
			}
			sess.Stop()

			m := sess.Metrics()
			fmt.Fprintf(cmd.OutOrStdout(), "count: %d\n", sess.Count())
			fmt.Fprintf(cmd.OutOrStdout(), "biomass: %.2f g\n", m.Biomass)
			fmt.Fprintf(cmd.OutOrStdout(), "feed: %.2f g (protein %.2f g, filler %.2f g)\n",
				m.Feed, m.Protein, m.Filler)

			if !save {
				return nil
			}
			recordID, err := sess.Save(ownerID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved record %s\n", recordID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source", "", "directory of frame images")
	cmd.Flags().BoolVar(&loop, "loop", true, "loop over the frames for the whole session")
	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "how long to sample")
	cmd.Flags().StringVar(&ownerID, "owner", "", "owner id to save the record under")
	cmd.Flags().BoolVar(&save, "save", false, "persist the measurement when the session ends")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
