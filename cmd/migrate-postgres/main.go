package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/marcelsud/message-relay/config"
	"github.com/marcelsud/message-relay/webhook/postgres"
)

/*
migrate-postgres - creates (or drops) the PostgreSQL tables used by the
postgres store. The API never touches the schema itself.

Run with:
  go run cmd/migrate-postgres/main.go [-drop]

POSTGRES_URL is read from .env or the environment.
*/

func main() {
	drop := flag.Bool("drop", false, "drop all tables instead of creating them")
	flag.Parse()

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, err := postgres.NewRepository(cfg.PostgresURL)
	if err != nil {
		fmt.Printf("Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(ctx)

	if *drop {
		if err := repo.DropTables(ctx); err != nil {
			fmt.Printf("Error dropping tables: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Tables dropped")
		return
	}

	if err := repo.CreateTables(ctx); err != nil {
		fmt.Printf("Error creating tables: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Schema ready: %v\n", postgres.Tables)
}
