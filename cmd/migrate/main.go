// Command migrate applies or rolls back the embedded schema migrations.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"findata-mcp/migrations"
	"findata-mcp/observability"
)

func main() {
	_ = godotenv.Load()
	observability.InitLogger(os.Getenv("LOG_JSON") == "true")

	if err := run(os.Args[1:]); err != nil {
		observability.Fatal("migration error", "error", err)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate <up|down|version> [N]")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch args[0] {
	case "up":
		if err := migrations.Up(databaseURL); err != nil {
			return err
		}
		observability.Info("migrations applied successfully")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid step count: %w", err)
			}
			steps = n
		}
		if err := migrations.Down(databaseURL, steps); err != nil {
			return err
		}
		observability.Info("rolled back migrations", "steps", steps)

	case "version":
		version, dirty, err := migrations.Version(databaseURL)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		observability.Info("schema version", "version", version, "dirty", dirty)

	default:
		return fmt.Errorf("unknown command: %s (use up, down, or version)", args[0])
	}

	return nil
}
