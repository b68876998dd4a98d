package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/attribute-engine/internal/config"
	"github.com/KirkDiggler/attribute-engine/internal/repositories/properties"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: list-properties <scope>")
		os.Exit(1)
	}

	scope := os.Args[1]
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Redis.Enabled() {
		cfg.Redis.URL = "redis://localhost:6379/0"
	}

	opts, err := cfg.Redis.Options()
	if err != nil {
		log.Fatalf("Failed to parse Redis config: %v", err)
	}

	client := redis.NewClient(opts)
	defer client.Close()

	// Test connection
	if _, pingErr := client.Ping(ctx).Result(); pingErr != nil {
		log.Fatalf("Failed to connect to Redis: %v", pingErr)
	}

	repo := properties.NewRedis(client)
	list, err := repo.ListByScope(ctx, scope)
	if err != nil {
		log.Fatalf("Failed to list properties: %v", err)
	}

	fmt.Printf("Found %d properties in scope %s:\n", len(list), scope)
	for _, data := range list {
		fmt.Printf("  %s: base=%g\n", data.ID, data.BaseValue)
		for _, m := range data.Modifiers {
			if m.IsRange {
				fmt.Printf("    %-12s p%-3d %g..%g\n", m.Type, m.Priority, m.RangeValue.X, m.RangeValue.Y)
				continue
			}
			fmt.Printf("    %-12s p%-3d %g\n", m.Type, m.Priority, m.FloatValue)
		}
	}
}
