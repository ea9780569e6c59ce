package cli

import (
	"github.com/spf13/cobra"
)

func newUsernameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "username",
		Short: "Check, claim or change your username",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <name>",
		Short: "Check whether a username can be claimed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			availability, err := a.resolver.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.out.Print(availability)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "claim <name>",
		Short: "Claim a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			profile, err := a.resolver.Claim(ctx, user, args[0])
			if err != nil {
				return err
			}
			a.out.Print(profile)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <name>",
		Short: "Change your username; existing clips move with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			profile, err := a.resolver.Rename(ctx, user, args[0])
			if err != nil {
				return err
			}
			a.out.Print(profile)
			return nil
		},
	})

	return cmd
}
