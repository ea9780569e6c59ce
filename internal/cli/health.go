package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Print(result)
			return nil
		},
	}
}
