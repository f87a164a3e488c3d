package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/pullfeed/internal/config"
	"github.com/pders01/pullfeed/internal/debuglog"
	"github.com/pders01/pullfeed/internal/feed"
	"github.com/pders01/pullfeed/internal/search"
	"github.com/pders01/pullfeed/internal/storage"
	"github.com/pders01/pullfeed/internal/tui"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "pullfeed",
		Short:         "Terminal feed reader with pull-to-refresh and infinite scrolling",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReader(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file (default ~/.config/pullfeed/config.toml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to database file (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr (command-line subcommands only)")

	root.AddCommand(
		versionCmd(),
		configCmd(),
		addCmd(opts),
		refreshCmd(opts),
		inspectCmd(),
		viewCmd(),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	return cfg, nil
}

// setupLogging sends logs to the configured file. Subcommands that do not
// own the terminal may log to stderr instead.
func setupLogging(cfg *config.Config, toStderr bool) error {
	if toStderr {
		debuglog.SetOutput(debuglog.LevelInfo, os.Stderr)
		return nil
	}
	return debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File)
}

// services bundles what every data command opens.
type services struct {
	store   *storage.Store
	index   *search.Index
	manager *feed.Manager
}

func openServices(cfg *config.Config) (*services, error) {
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}

	s := &services{store: store, manager: feed.NewManager(store, cfg)}

	// Search is optional; the reader works without it.
	if cfg.Database.SearchIndex != "" {
		index, err := openIndex(cfg.Database.SearchIndex, store)
		if err != nil {
			debuglog.Warnf("search disabled: %v", err)
		} else {
			s.index = index
			s.manager.SetIndexer(index)
		}
	}
	return s, nil
}

// openIndex opens the index and fills it from the store when it is empty.
func openIndex(path string, store *storage.Store) (*search.Index, error) {
	index, err := search.Open(path)
	if err != nil {
		return nil, err
	}

	n, err := index.DocCount()
	if err == nil && n == 0 {
		if err := index.Reindex(store); err != nil {
			debuglog.Warnf("initial reindex failed: %v", err)
		}
	}
	return index, nil
}

func (s *services) Close() {
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			debuglog.Warnf("closing search index: %v", err)
		}
	}
	if err := s.store.Close(); err != nil {
		debuglog.Warnf("closing store: %v", err)
	}
}

func runReader(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := setupLogging(cfg, false); err != nil {
		return err
	}
	defer debuglog.Close()

	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	tui.ApplyColors(cfg.UI.Colors)

	app, err := tui.NewApp(svc.store, svc.manager, svc.index, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	debuglog.Infof("starting reader, db=%s", cfg.Database.Path)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
