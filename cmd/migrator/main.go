package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lifecursor/internal/storage/sqlite"
)

func main() {
	var storagePath string
	flag.StringVar(&storagePath, "storage-path", "", "path to the sqlite database (or use STORAGE_PATH env)")
	flag.Parse()

	if storagePath == "" {
		storagePath = os.Getenv("STORAGE_PATH")
	}
	if storagePath == "" {
		log.Fatal("storage-path is required")
	}

	storage, err := sqlite.New(storagePath)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer storage.Close()

	applied, err := storage.Migrate()
	if err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	if !applied {
		fmt.Println("no migrations to apply")
		return
	}

	fmt.Println("migrations applied successfully")
}
