// Package cmd wires configuration, storage and the authenticators into the
// dacforge commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/fragmede/dacforge/internal/cache"
	"github.com/fragmede/dacforge/internal/config"
	"github.com/fragmede/dacforge/internal/coordinator"
	"github.com/fragmede/dacforge/internal/logging"
	"github.com/fragmede/dacforge/internal/store"
	"github.com/fragmede/dacforge/internal/ual"
	"github.com/fragmede/dacforge/internal/ual/remote"
	"github.com/fragmede/dacforge/internal/ui"
)

var (
	envFile string

	cfg    config.Config
	db     *cache.DB
	logOut io.Closer
)

func Execute() error {
	root := &cobra.Command{
		Use:           "dacforge",
		Short:         "Create a DAC from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(envFile)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
				return fmt.Errorf("creating cache dir: %w", err)
			}
			logOut, err = logging.Init(cfg.LogPath, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			db, err = cache.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeAll()
		},
		RunE: runTUI,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(memoCmd(), sessionCmd(), historyCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeAll()
	}
	return err
}

func closeAll() error {
	var err error
	if db != nil {
		err = db.Close()
		db = nil
	}
	if logOut != nil {
		logOut.Close()
		logOut = nil
	}
	return err
}

// authenticators builds one remote provider per configured endpoint.
func authenticators(c config.Config) []ual.Authenticator {
	var out []ual.Authenticator
	for _, ep := range c.Endpoints() {
		out = append(out, remote.New(ep.Name, ep.URL, c.RequestTimeout))
	}
	return out
}

func runTUI(cmd *cobra.Command, args []string) error {
	session, err := db.LoadSession()
	if err != nil {
		slog.Warn("Loading session failed", "error", err)
		session = cache.Session{}
	}

	registry := ual.NewRegistry(authenticators(cfg)...)
	if len(registry.All()) == 0 {
		slog.Warn("No authenticators configured", "env", "DACFORGE_AUTHENTICATORS")
	}

	state := store.New(registry, session)
	coord := coordinator.New(cmd.Context(), state, clockwork.NewRealClock(), config.LoadContracts(), db)

	app := ui.NewApp(cfg, coord, db)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
