package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vzeefun/vzee/internal/client"
	"github.com/vzeefun/vzee/internal/model"
)

var errNotSignedIn = errors.New("not signed in: run `vzee login` first")

func newLoginCmd(a *app) *cobra.Command {
	var (
		email   string
		name    string
		idToken string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a session token",
		Long: `Sign in to vzee.fun.

With --id-token, exchange a signed identity token for a session.
With --email, use the development login (only enabled on dev servers).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				result *client.AuthResult
				err    error
			)
			switch {
			case idToken != "":
				result, err = a.api.TokenLogin(ctx, idToken)
			case email != "":
				result, err = a.api.DevLogin(ctx, email, name)
			default:
				return errors.New("one of --email or --id-token is required")
			}
			if err != nil {
				return err
			}

			if err := a.cfg.SaveToken(result.SessionToken); err != nil {
				return err
			}
			if err := a.resolver.Remember(ctx, result); err != nil {
				a.logger.Warn("failed to cache user", slog.String("error", err.Error()))
			}

			a.out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email for development login")
	cmd.Flags().StringVar(&name, "name", "", "Display name for development login")
	cmd.Flags().StringVar(&idToken, "id-token", "", "Signed identity token")
	cmd.MarkFlagsMutuallyExclusive("email", "id-token")

	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.cfg.Token == "" {
				a.out.PrintMessage("Not signed in")
				return nil
			}

			user, err := a.currentUser(ctx)
			if err != nil && !client.IsUnavailable(err) {
				return err
			}

			signOutErr := a.resolver.SignOut(ctx, user)
			if err := a.cfg.ClearToken(); err != nil {
				return errors.Join(signOutErr, err)
			}
			if signOutErr != nil {
				return signOutErr
			}

			a.out.PrintMessage("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their username",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			user, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			result := &WhoamiResult{User: user}
			username, err := a.resolver.Resolve(ctx, user)
			switch {
			case err == nil:
				result.Username = username
			case errors.Is(err, model.ErrNoUsername):
			case client.IsUnavailable(err):
				result.Offline = true
			default:
				return err
			}

			a.out.Print(result)
			return nil
		},
	}
}
