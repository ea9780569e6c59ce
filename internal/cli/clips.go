package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/playback"
)

// ClipRef names a clip as @username/title
type ClipRef struct {
	Username string
	Title    string
}

func (r ClipRef) String() string {
	return "@" + r.Username + "/" + r.Title
}

// parseClipRef accepts "@alice/demo-1", "alice/demo-1" or a share URL
func parseClipRef(s string) (ClipRef, error) {
	ref := strings.TrimSpace(s)
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return ClipRef{}, fmt.Errorf("invalid clip url: %w", err)
		}
		ref = u.Path
	}
	ref = strings.Trim(ref, "/")

	username, title, ok := strings.Cut(ref, "/")
	if !ok || strings.Contains(title, "/") {
		return ClipRef{}, fmt.Errorf("invalid clip reference %q: want @username/title", s)
	}

	parsed := ClipRef{
		Username: model.CanonicalUsername(username),
		Title:    model.CanonicalTitle(title),
	}
	if err := model.ValidateUsername(parsed.Username); err != nil {
		return ClipRef{}, err
	}
	if err := model.ValidateTitle(parsed.Title); err != nil {
		return ClipRef{}, err
	}
	return parsed, nil
}

func newUploadCmd(a *app) *cobra.Command {
	var (
		title string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload an audio clip",
		Long: `Upload a local audio file under your username.

The file must be audio and at most 10 MB. The title becomes the last
part of the share link: https://vzee.fun/@username/title.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Token == "" {
				return errNotSignedIn
			}

			upload, err := a.uploader.Upload(cmd.Context(), title, file)
			if err != nil {
				return err
			}
			// Nothing plays the staged file once the command exits
			defer a.urls.Revoke(upload.LocalURL)

			a.out.Print(&UploadResult{Clip: upload.Clip})
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Clip title")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Audio file to upload")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [username]",
		Short: "List a username's clips, newest first",
		Long: `List clips for a username. Without an argument, lists your own.

When the server is unreachable the last list fetched for that username
is shown instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var username string
			if len(args) == 1 {
				username = model.CanonicalUsername(args[0])
			} else {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}
				username, err = a.resolver.Resolve(ctx, user)
				if err != nil {
					return err
				}
			}

			clips, err := a.directory.List(ctx, username)
			if err != nil {
				return err
			}
			a.out.Print(&ClipListResult{Username: username, Clips: clips})
			return nil
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <@username/title>",
		Short: "Look up a clip by its share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseClipRef(args[0])
			if err != nil {
				return err
			}
			clip, err := a.directory.Lookup(cmd.Context(), ref.Username, ref.Title)
			if err != nil {
				return err
			}
			a.out.Print(clip)
			return nil
		},
	}
}

func newPlayCmd(a *app) *cobra.Command {
	var (
		out      string
		original string
	)

	cmd := &cobra.Command{
		Use:   "play <@username/title>",
		Short: "Stream a clip's audio to a file or stdout",
		Long: `Stream a clip's audio.

If the audio link has expired and --original names a local copy, playback
recovers once from that copy and carries on where it stopped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ref, err := parseClipRef(args[0])
			if err != nil {
				return err
			}
			clip, err := a.directory.Lookup(ctx, ref.Username, ref.Title)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			player := playback.NewPlayer(playback.NewStreamOpener(a.urls), a.urls, a.logger)
			defer func() { _ = player.Close() }()
			player.Load(playback.Source{URL: clip.AudioURL, Original: original})

			counter := &countingWriter{w: w}
			if err := player.Stream(ctx, counter); err != nil {
				if errors.Is(err, playback.ErrStaleURL) && original == "" {
					return fmt.Errorf("%w: pass --original to play from a local copy", err)
				}
				return err
			}

			a.logger.Debug("playback finished",
				slog.String("clip", ref.String()),
				slog.Int64("bytes", counter.n),
				slog.Int("recoveries", player.Recoveries()),
			)

			// Audio on stdout leaves no room for a summary
			if out != "-" {
				a.out.Print(&PlayResult{
					Ref:       ref.String(),
					Bytes:     counter.n,
					State:     player.State().String(),
					Recovered: player.Recoveries() > 0,
					Original:  original,
				})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "-", `Output file, or "-" for stdout`)
	cmd.Flags().StringVar(&original, "original", "", "Local copy to recover from if the link expired")

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one of your clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			user, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			username, err := a.resolver.Resolve(ctx, user)
			if err != nil {
				return err
			}

			title = model.CanonicalTitle(title)
			if err := a.api.DeleteClip(ctx, title); err != nil {
				return err
			}
			if err := a.cache.InvalidateClips(ctx, username); err != nil {
				a.logger.Warn("failed to invalidate cached clips", slog.String("error", err.Error()))
			}

			a.out.PrintMessage(fmt.Sprintf("Deleted @%s/%s", username, title))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Clip title")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
