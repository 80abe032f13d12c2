// Command steward serves the RBAC administration API over HTTP.
//
// Configuration comes from the environment (a .env file is loaded when
// present):
//
//	STEWARD_ADDR       listen address (default :8080)
//	STEWARD_MONGO_URI  MongoDB connection string; empty runs in-memory
//	STEWARD_MONGO_DB   MongoDB database name (default steward)
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/xraph/forge"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/steward"
	"github.com/xraph/steward/api"
	"github.com/xraph/steward/store"
	"github.com/xraph/steward/store/memory"
	"github.com/xraph/steward/store/mongo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	_ = godotenv.Load() //nolint:errcheck // a missing .env file is fine

	addr := envOr("STEWARD_ADDR", ":8080")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	eng, err := steward.NewEngine(
		steward.WithStore(st),
		steward.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	router := forge.NewRouter()
	if err := api.New(eng, router).RegisterRoutes(router); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := eng.Stop(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// openStore picks the backend from the environment: MongoDB when a
// connection string is set, in-memory otherwise.
func openStore(logger *slog.Logger) (store.Store, error) {
	uri := os.Getenv("STEWARD_MONGO_URI")
	if uri == "" {
		logger.Warn("no STEWARD_MONGO_URI set, using in-memory store")
		return memory.New(), nil
	}

	client, err := mongod.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	db := envOr("STEWARD_MONGO_DB", "steward")
	logger.Info("using mongodb store", "database", db)
	return mongo.New(client, db), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
