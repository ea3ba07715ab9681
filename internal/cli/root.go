// Package cli implements the timebank command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutu-network/timebank/internal/app/engine"
	"github.com/tutu-network/timebank/internal/app/store"
	"github.com/tutu-network/timebank/internal/daemon"
	"github.com/tutu-network/timebank/internal/domain"
	"github.com/tutu-network/timebank/internal/infra/clock"
	"github.com/tutu-network/timebank/internal/infra/sqlite"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "timebank",
	Short: "Earn and spend a persistent time balance",
	Long: `timebank keeps a time balance that grows while you are earning and
shrinks while you are using it. The balance survives restarts: the stored
mode keeps running in real time while the program is closed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default $TIMEBANK_HOME/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ─── Wiring ─────────────────────────────────────────────────────────────────

// runtime bundles what a command needs to drive the engine.
type runtime struct {
	cfg    daemon.Config
	clock  clock.Clock
	engine *engine.Engine
	store  *store.RecordStore
	close  func()
}

// openRuntime loads config, opens storage and builds an engine on the real
// clock. The engine is not opened; callers choose between Open and a
// read-only Snapshot. Notifications go to the command's output.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var kv store.KV
	closeFn := func() {}
	switch cfg.Storage.Backend {
	case "memory":
		kv = store.NewMemory()
	case "sqlite", "":
		db, err := sqlite.Open(cfg.StorageDir())
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		kv = db
		closeFn = func() { db.Close() }
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	st := store.New(kv, cfg.Storage.Key)
	clk := clock.Real()
	e := engine.New(cfg.Engine(), clk, st)
	out := cmd.OutOrStdout()
	e.SetNotifier(domain.NotifierFunc(func(msg string) {
		fmt.Fprintf(out, "🎁 %s\n", msg)
	}))

	return &runtime{
		cfg:    cfg,
		clock:  clk,
		engine: e,
		store:  st,
		close: func() {
			e.Close()
			closeFn()
		},
	}, nil
}

// printStatus writes the one-line status shown after every command.
func printStatus(cmd *cobra.Command, s engine.Status) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", s.Display, s.Label)
	if s.LastSaveError != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  not saved: %s\n", s.LastSaveError)
	}
}
