package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vennlabs/custodiad/internal/config"
	"github.com/vennlabs/custodiad/internal/core/op"
	"github.com/vennlabs/custodiad/internal/core/state"
	"github.com/vennlabs/custodiad/internal/rpc"
	"github.com/vennlabs/custodiad/internal/storage/history"
	"github.com/vennlabs/custodiad/internal/storage/kv"
	"github.com/vennlabs/custodiad/internal/storage/kv/leveldb"
	"github.com/vennlabs/custodiad/internal/storage/kv/pebble"
	"github.com/vennlabs/custodiad/internal/storage/snapshot"
)

// serverCmd starts the settlement node. This is the default command
// when no subcommand is given.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the custodiad settlement node",
	Long: `Start the custodiad node: restores the latest ledger snapshot from
the key-value store, serves JSON-RPC reads and signed submissions, and
persists snapshots periodically and on shutdown.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Node.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	manager, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	db, err := manager.Open("ledger")
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	store := snapshot.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger, err := store.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		ledger = state.New()
		if !quiet {
			log.Println("no snapshot found, starting from an empty ledger")
		}
	case err != nil:
		return fmt.Errorf("failed to restore snapshot: %w", err)
	default:
		if !quiet {
			log.Println("ledger restored from snapshot")
		}
	}

	engine := op.NewEngine(ledger)

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(ctx, cfg.History.Driver, cfg.HistoryDSN())
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer hist.Close()
	}

	hub := rpc.NewHub()
	service, err := rpc.NewService(engine, hist, hub)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)

	if cfg.RPC.Enabled {
		server := rpc.NewServer(cfg.RPC.Addr, service, hub)
		group.Go(func() error {
			if !quiet {
				log.Printf("rpc listening on %s", cfg.RPC.Addr)
			}
			return server.ListenAndServe(ctx)
		})
	}

	if cfg.Snapshot.IntervalSeconds > 0 {
		interval := time.Duration(cfg.Snapshot.IntervalSeconds) * time.Second
		group.Go(func() error {
			return snapshotLoop(ctx, engine, store, interval)
		})
	}

	err = group.Wait()

	// Final snapshot regardless of how the run loop ended.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var saveErr error
	engine.Snapshot(func(s *state.State) {
		saveErr = store.Save(saveCtx, s)
	})
	if saveErr != nil {
		log.Printf("final snapshot failed: %v", saveErr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openManager(cfg *config.Config) (kv.Manager, error) {
	switch cfg.Node.Backend {
	case "pebble":
		return pebble.NewManager(cfg.Node.DataDir), nil
	case "leveldb":
		return leveldb.NewManager(cfg.Node.DataDir), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Node.Backend)
	}
}

// snapshotLoop persists the ledger on a fixed cadence until the context
// ends.
func snapshotLoop(ctx context.Context, engine *op.Engine, store *snapshot.Store, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			var err error
			engine.Snapshot(func(s *state.State) {
				err = store.Save(ctx, s)
			})
			if err != nil {
				log.Printf("periodic snapshot failed: %v", err)
			}
		}
	}
}
