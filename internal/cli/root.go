// Package cli implements the vzee command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vzeefun/vzee/internal/client"
	"github.com/vzeefun/vzee/internal/localcache"
	"github.com/vzeefun/vzee/internal/playback"
)

// app holds what a command needs once flags are parsed
type app struct {
	cfg       *Config
	logger    *slog.Logger
	api       *client.Client
	cache     *localcache.Cache
	urls      *playback.ObjectURLs
	resolver  *client.Resolver
	uploader  *client.Uploader
	directory *client.Directory
	out       *Output
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := DefaultConfig()
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "vzee",
		Short: "Share short audio clips as vzee.fun links",
		Long: `vzee is a command line client for vzee.fun.

Sign in, claim a username, upload audio clips and share them as
links of the form https://vzee.fun/@username/title.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadFile(cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.LoadToken(); err != nil {
				return err
			}
			return a.open(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: VZEE_SERVER)")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: VZEE_TOKEN)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: VZEE_TOKEN_FILE)")
	flags.StringVar(&cfg.CachePath, "cache", cfg.CachePath, `Local cache file, or "memory" (env: VZEE_CACHE)`)
	flags.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "TOML config file (env: VZEE_CONFIG)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newLogoutCmd(a))
	rootCmd.AddCommand(newWhoamiCmd(a))
	rootCmd.AddCommand(newUsernameCmd(a))
	rootCmd.AddCommand(newUploadCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newOpenCmd(a))
	rootCmd.AddCommand(newPlayCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newHealthCmd(a))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		format := "text"
		if f := cmd.PersistentFlags().Lookup("output"); f != nil {
			format = f.Value.String()
		}
		NewOutput(format, os.Stdout, os.Stderr).PrintError(err)
		os.Exit(1)
	}
}

func (a *app) open(ctx context.Context, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if a.cfg.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	a.out = NewOutput(a.cfg.Output, stdout, stderr)

	var store localcache.Store
	if a.cfg.CachePath == CacheMemory {
		store = localcache.NewMemoryStore()
	} else {
		s, err := localcache.OpenSQLite(ctx, a.cfg.CachePath)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		store = s
	}

	a.api = client.NewClient(a.cfg.ServerURL, a.cfg.Token)
	a.cache = localcache.New(store)
	a.urls = playback.NewObjectURLs()
	a.resolver = client.NewResolver(a.api, a.cache, a.logger)
	a.uploader = client.NewUploader(a.api, a.cache, a.urls, a.logger)
	a.directory = client.NewDirectory(a.api, a.cache, a.logger)
	return nil
}

func (a *app) close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// currentUser returns the signed-in user, from the server when reachable
func (a *app) currentUser(ctx context.Context) (client.User, error) {
	if a.cfg.Token == "" {
		return client.User{}, errNotSignedIn
	}

	me, err := a.api.Me(ctx)
	if err == nil {
		return me.User, nil
	}
	if !client.IsUnavailable(err) {
		return client.User{}, err
	}

	cached, ok, cerr := a.cache.User(ctx)
	if cerr != nil || !ok {
		return client.User{}, err
	}
	return client.User{
		ID:          cached.ID,
		Email:       cached.Email,
		DisplayName: cached.Name,
		PictureURL:  cached.Picture,
	}, nil
}
