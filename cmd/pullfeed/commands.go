package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/pullfeed/internal/config"
	"github.com/pders01/pullfeed/internal/debuglog"
	"github.com/pders01/pullfeed/internal/tui"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if !short {
				tui.ShowBanner(out, Version)
			}
			fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
			fmt.Fprintln(out, "github.com/pders01/pullfeed")
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version line only")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	}
	generate.Flags().StringVar(&path, "path", "", "where to write the file (default ~/.config/pullfeed/config.toml)")

	cmd.AddCommand(generate)
	return cmd
}

func addCmd(opts *options) *cobra.Command {
	var allowPrivate bool

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Subscribe to a feed and fetch its articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg, opts.verbose); err != nil {
				return err
			}
			defer debuglog.Close()

			svc, err := openServices(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			svc.manager.SetPermissiveValidation(allowPrivate)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Feed.HTTPTimeout)
			defer cancel()

			f, err := svc.manager.AddFeed(ctx, args[0])
			if err != nil {
				return err
			}
			page, err := svc.store.ArticlesPage(f.ID, 0, 1)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.MsgAddedFeed(f.DisplayTitle(), page.Total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowPrivate, "allow-private", false, "allow localhost and private network addresses")
	return cmd
}

func refreshCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every feed and store new articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg, opts.verbose); err != nil {
				return err
			}
			defer debuglog.Close()

			svc, err := openServices(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			svc.manager.SetForceRefresh(force)

			result, err := svc.manager.RefreshAll(cmd.Context())
			if err != nil {
				return err
			}

			docs := -1
			if svc.index != nil {
				if n, err := svc.index.DocCount(); err == nil {
					docs = int(n)
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.MsgRefreshSummary(result.Updated, result.Added, len(result.Errors), docs))
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
			}
			return result.Err()
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore caching headers and the refresh interval")
	return cmd
}
