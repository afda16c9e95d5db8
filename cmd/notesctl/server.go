package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/config"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/db"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/sealer"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	gormstore "github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/memory"
)

const shutdownTimeout = 10 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8080
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the notes server",
	Long: `Run the notes server.

The server requires NOTES_TOKEN_KEY. The memory backend (default) keeps state
in process and, when snapshot_path is configured, persists it to an encrypted
snapshot sealed with NOTES_DATA_KEY. The postgres backend requires DATABASE_URL
and runs database migrations on startup unless --no-migrate is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		watch, _ := cmd.Flags().GetBool("watch-config")

		if err := runServer(host, port, noMigrate, watch); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload the config file when it changes")
}

func runServer(host, port string, noMigrate, watch bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	audit.SetEnabled(cfg.AuditEnabled)

	tokenKey, err := middleware.TokenKeyFromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var persister *memory.Persister
	var stores server.Stores
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if db.URL() == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres backend")
		}
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
		}
		database, err := db.Connect(db.Config{})
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(database) }()

		pg := gormstore.NewStores(database, cfg.MaxNoteBytes)
		stores = server.Stores{
			Devices: pg.Devices,
			Secrets: pg.Secrets,
			Notes:   pg.Notes,
			Health:  pg.Health,
			Backend: config.BackendPostgres,
		}

	default:
		backend := memory.NewBackend(cfg.MaxNoteBytes)
		if cfg.SnapshotPath != "" {
			persister, err = newPersister(backend, cfg)
			if err != nil {
				return err
			}
			if err := persister.Load(); err != nil {
				return fmt.Errorf("failed to load snapshot %s: %w", cfg.SnapshotPath, err)
			}
		}
		stores = server.Stores{
			Devices: backend.Devices,
			Secrets: backend.Secrets,
			Notes:   backend.Notes,
			Health:  memory.HealthStore{},
			Backend: config.BackendMemory,
		}
	}

	s := server.NewServer(stores, cfg, middleware.NewTokenAuthenticator(tokenKey), host, port)
	endpoints.RegisterAll(s)

	if watch {
		go func() {
			err := config.Watch(ctx, func(next *config.NotesConfig, err error) {
				if err != nil {
					log.Printf("Config reload failed, keeping previous configuration: %v", err)
					return
				}
				audit.SetEnabled(next.AuditEnabled)
				s.SetConfig(next)
				log.Printf("Configuration reloaded from %s", next.ConfigFilePath())
			})
			if err != nil {
				log.Printf("Config watcher stopped: %v", err)
			}
		}()
	}

	log.Printf("Running %s server at http://%s...\n", stores.Backend, s.Addr())
	return serve(ctx, s, s.Start, persister)
}

// serve runs start until it fails or ctx is done. On shutdown in-flight
// requests are drained before the persister takes its final snapshot.
func serve(ctx context.Context, s *server.Server, start func() error, persister *memory.Persister) error {
	persistCtx, stopPersisting := context.WithCancel(context.Background())
	defer stopPersisting()

	var persisted chan error
	if persister != nil {
		persisted = make(chan error, 1)
		go func() { persisted <- persister.Run(persistCtx) }()
	}

	served := make(chan error, 1)
	go func() { served <- start() }()

	var serveErr error
	select {
	case serveErr = <-served:
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		cancel()
		if err := <-served; err != nil {
			log.Printf("Server: %v", err)
		}
	}

	stopPersisting()
	return errors.Join(serveErr, waitPersisted(persisted))
}

func newPersister(backend *memory.Backend, cfg *config.NotesConfig) (*memory.Persister, error) {
	p := &memory.Persister{
		Backend:  backend,
		Path:     cfg.SnapshotPath,
		Interval: cfg.SnapshotEvery(),
	}
	cipher, err := sealer.FromEnv()
	switch {
	case errors.Is(err, sealer.ErrNoDataKey):
		log.Printf("Warning: %s is not set, snapshots are stored unencrypted", sealer.DataKeyEnv)
	case err != nil:
		return nil, err
	default:
		p.Cipher = cipher
	}
	return p, nil
}

func waitPersisted(persisted chan error) error {
	if persisted == nil {
		return nil
	}
	if err := <-persisted; err != nil {
		return fmt.Errorf("final snapshot failed: %w", err)
	}
	return nil
}
