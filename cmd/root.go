// Package cmd wires the kiosk backend's command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aquasense/shrimpscale/internal/auth"
	"github.com/aquasense/shrimpscale/internal/cloudsync"
	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/datastore"
	"github.com/aquasense/shrimpscale/internal/observability"
	"github.com/aquasense/shrimpscale/internal/remotestore"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shrimpscale",
		Short: "Shrimp biomass measurement backend",
		Long: "Counts shrimp on camera frames with a TFLite detector, keeps " +
			"measurement records in a local SQLite store and mirrors them to " +
			"MongoDB when the network allows.",
	}

	subcommands := []*cobra.Command{
		loginCommand(settings),
		measureCommand(settings),
		recordsCommand(settings),
		syncCommand(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// openStore opens the local database for the duration of one command.
func openStore(settings *conf.Settings) (datastore.Interface, error) {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return nil, err
	}
	return store, nil
}

// remoteStore returns the configured remote mirror, or nil when the kiosk
// runs without one.
func remoteStore(settings *conf.Settings) *remotestore.Store {
	if !settings.Remote.Configured() {
		return nil
	}
	return remotestore.New(&settings.Remote)
}

// newGateway builds the credential gateway over the local store and the
// optional remote.
func newGateway(settings *conf.Settings, store datastore.Interface) *auth.Gateway {
	var remote auth.RemoteSource
	if r := remoteStore(settings); r != nil {
		remote = r
	}
	return auth.NewGateway(store, remote, settings.Remote.AuthTimeout)
}

// newSyncEngine builds the record sync engine over the local store and the
// optional remote.
func newSyncEngine(settings *conf.Settings, store datastore.Interface, metrics *observability.Metrics) *cloudsync.Engine {
	var remote cloudsync.Remote
	if r := remoteStore(settings); r != nil {
		remote = r
	}
	return cloudsync.New(store, remote, &settings.Remote, metrics)
}
