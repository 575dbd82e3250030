package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"partyplan/internal/config"
	"partyplan/internal/database"
	"partyplan/internal/repository"
	"partyplan/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Initialize the document store
	store, cleanup, err := initStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer cleanup()

	backupService := service.NewBackupService(store)
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])

		output := *exportOutput
		if output == "" {
			output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}

		if err := backupService.ExportToFile(ctx, output); err != nil {
			log.Fatalf("Export failed: %v", err)
		}

	case "import":
		importCmd.Parse(os.Args[2:])

		if *importInput == "" {
			log.Fatal("Import requires -input")
		}

		if err := backupService.ImportFromFile(ctx, *importInput, *importClear); err != nil {
			log.Fatalf("Import failed: %v", err)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func initStore(cfg *config.Config) (repository.DocumentStore, func(), error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case "redis":
		store, err := repository.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, err
		}

		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}

		return repository.NewSQLStore(db), func() { db.Close() }, nil
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  backup export [-output file.json]")
	fmt.Println("  backup import -input file.json [-clear]")
}
