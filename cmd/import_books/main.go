package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"library-manager/config"
	"library-manager/library"
	"library-manager/logger"
)

func main() {
	envFile := flag.String("env-file", config.DefaultEnvFile, "path to the environment file")
	reset := flag.Bool("reset", false, "remove the existing database files before importing")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: import_books [-reset] [-env-file FILE] catalog.csv\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *reset {
		fmt.Println("Cleaning up existing database files...")
		for _, file := range []string{cfg.DatabaseName, cfg.DatabaseName + "-shm", cfg.DatabaseName + "-wal"} {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
			}
		}
		fmt.Println("Database cleanup complete.")
	}

	manager, err := library.NewLibraryManager(library.Options{
		DBPath:     cfg.DatabaseName,
		Pepper:     cfg.Pepper,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}
	rows, err := library.ReadCatalogCSV(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importing %d books from %s...\n", len(rows), path)
	successCount := 0
	errorCount := 0
	for _, row := range rows {
		fmt.Printf("Importing: %s by %s... ", row.Title, row.Author)
		bookID, err := manager.AddBook(row.Title, row.Author, row.Category, row.GenreOrSubject)
		if err != nil {
			fmt.Printf("ERROR (line %d) - %v\n", row.Line, err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", bookID)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCatalog:")
		books, err := manager.ListBooks()
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
		} else {
			fmt.Printf("%-3s %-50s %-30s\n", "ID", "Title", "Author")
			fmt.Println(strings.Repeat("-", 85))
			for _, book := range books {
				fmt.Printf("%-3d %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
			}
		}
	}
	if errorCount > 0 {
		manager.Close()
		os.Exit(1)
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
