// Command healthlog is a thin CLI host around the measurement ledger. It
// wires a storage backend to the ledger and forwards plain function calls;
// all domain logic lives in internal/app and internal/domain.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"healthlog/internal/adapter/postgres"
	"healthlog/internal/adapter/sqlite"
	"healthlog/internal/app"
	"healthlog/internal/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// openLedger picks a backend and rehydrates the ledger. DATABASE_URL selects
// PostgreSQL; otherwise a SQLite file under HEALTHLOG_DB is used.
func openLedger(ctx context.Context) (*app.Ledger, io.Closer, error) {
	clock := domain.NewClock(nil)

	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		store, err := postgres.Open(connStr)
		if err != nil {
			return nil, nil, err
		}
		l, err := app.Open(ctx, store, clock)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return l, store, nil
	}

	path := env("HEALTHLOG_DB", defaultDBPath())
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	store, err := sqlite.NewFileStore(path, clock)
	if err != nil {
		return nil, nil, err
	}
	l, err := app.Open(ctx, store, clock)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return l, store, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("home dir: %v, using current directory", err)
		return "healthlog.db"
	}
	return filepath.Join(home, ".healthlog", "healthlog.db")
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
