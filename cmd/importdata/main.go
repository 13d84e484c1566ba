// Command importdata copies the JSON file dataset into the configured storage
// backend. Users, services and sections that already exist are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"movexa_cms/internal/backend"
	"movexa_cms/internal/config"
	"movexa_cms/internal/importer"
	"movexa_cms/internal/repository/filestore"
)

func main() {
	dataDir := flag.String("data-dir", "", "directory holding users.json, services.json and content.json (defaults to DATA_DIR)")
	to := flag.String("to", "", "target storage backend (defaults to STORAGE_BACKEND)")
	flag.Parse()

	if err := run(*dataDir, *to); err != nil {
		fmt.Fprintln(os.Stderr, "importdata:", err)
		os.Exit(1)
	}
}

func run(dataDir, to string) error {
	cfg, _, err := config.Load()
	if err != nil {
		return err
	}
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if to != "" {
		cfg.StorageBackend = to
	}
	if cfg.StorageBackend == config.BackendFile && sameDir(dataDir, cfg.DataDir) {
		return fmt.Errorf("source and target are both %s", dataDir)
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	src, err := filestore.Open(dataDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dst, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer dst.Close()

	report, err := importer.New(dst, log).Run(ctx, src.Snapshot())
	if err != nil {
		return err
	}
	fmt.Printf("users: %d imported, %d skipped\n", report.Users.Imported, report.Users.Skipped)
	fmt.Printf("services: %d imported, %d skipped\n", report.Services.Imported, report.Services.Skipped)
	fmt.Printf("content sections: %d imported, %d skipped\n", report.Content.Imported, report.Content.Skipped)
	return nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
