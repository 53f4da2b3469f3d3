package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquasense/shrimpscale/internal/conf"
)

// loginCommand verifies a username and password against the remote user
// directory, falling back to locally cached credentials when offline.
func loginCommand(settings *conf.Settings) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials and print the owner id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			gateway := newGateway(settings, store)
			ownerID, err := gateway.Verify(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ownerID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
