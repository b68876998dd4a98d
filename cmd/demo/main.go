package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/attribute-engine/internal/config"
	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
	"github.com/KirkDiggler/attribute-engine/internal/domain/strategy"
	"github.com/KirkDiggler/attribute-engine/internal/events"
	"github.com/KirkDiggler/attribute-engine/internal/random"
	"github.com/KirkDiggler/attribute-engine/internal/repositories/properties"
	"github.com/KirkDiggler/attribute-engine/internal/services/sheet"
	"github.com/KirkDiggler/attribute-engine/internal/uuid"
)

func main() {
	scope := flag.String("scope", "demo-hero", "Scope to persist the sheet under")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	engine, err := property.NewEngine(&property.EngineConfig{
		Registry: strategy.Init(),
		Source:   random.NewSource(cfg.Engine.RandomSeed),
		Bus:      events.NewBus(uuid.NewGoogleUUIDGenerator()),
		MaxDepth: cfg.Engine.MaxDepth,
		Epsilon:  cfg.Engine.Epsilon,
	})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	engine.SubscribeRejections(func(e events.Event) error {
		fmt.Printf("rejected %s -> %s: %v\n", e.PropertyID, e.DependencyID, e.Err)
		return nil
	})

	props := buildSheet(engine)

	ctx := context.Background()
	repo := properties.NewInMemoryRepository()
	if cfg.Redis.Enabled() {
		if client := connectRedis(ctx, cfg.Redis); client != nil {
			defer client.Close()
			repo = properties.NewRedis(client)
			log.Println("Using Redis for persistence")
		}
	}

	svc := sheet.NewService(&sheet.ServiceConfig{
		Repository: repo,
		Engine:     engine,
	})
	if err := svc.Save(ctx, *scope, props...); err != nil {
		log.Fatalf("Failed to save sheet: %v", err)
	}

	restored, err := svc.LoadAll(ctx, *scope)
	if err != nil {
		log.Fatalf("Failed to reload sheet: %v", err)
	}
	fmt.Printf("\nReloaded %d snapshots from scope %s:\n", len(restored), *scope)
	for _, p := range restored {
		fmt.Printf("  %-14s base=%-6g value=%g\n", p.ID(), p.BaseValue(), p.Value())
	}
}

// buildSheet wires a small character sheet and walks it through a few
// changes, returning the properties worth persisting
func buildSheet(engine *property.Engine) []*property.Property {
	strength := engine.NewProperty("strength", 15)
	strMod := engine.NewProperty("strength_mod", 0)
	if !strMod.AddDependency(strength, func(_ *property.Property, v float64) float64 {
		return math.Floor((v - 10) / 2)
	}) {
		log.Fatal("Failed to link strength_mod to strength")
	}

	proficiency := engine.NewProperty("proficiency", 2)

	attack, err := engine.NewCombineProperty("attack", func(c *property.CombineProperty) float64 {
		return c.GetProperty("mod").Value() + c.GetProperty("prof").Value()
	})
	if err != nil {
		log.Fatalf("Failed to create attack: %v", err)
	}
	if err := attack.AddProperty("mod", strMod); err != nil {
		log.Fatalf("Failed to add attack modifier: %v", err)
	}
	if err := attack.AddProperty("prof", proficiency); err != nil {
		log.Fatalf("Failed to add attack proficiency: %v", err)
	}

	damage := engine.NewProperty("damage", 0)
	if !damage.AddDependency(strMod, func(_ *property.Property, v float64) float64 { return v }) {
		log.Fatal("Failed to link damage to strength_mod")
	}
	mustAddModifier(damage, modifier.NewRange(modifier.KindAdd, 0, 1, 8))

	hp := engine.NewProperty("hit_points", 12)
	mustAddModifier(hp, modifier.NewRange(modifier.KindClamp, 100, 0, 12))
	hp.Subscribe(func(e events.Event) error {
		fmt.Printf("  hit_points changed %g -> %g\n", e.Old, e.New)
		return nil
	})

	show := func(label string) {
		fmt.Printf("%s\n  strength=%g mod=%g attack=%g damage=%g hp=%g\n",
			label, strength.Value(), strMod.Value(), attack.Value(), damage.Value(), hp.Value())
	}

	show("Initial sheet:")

	strength.SetBaseValue(18)
	show("After strength 18:")

	belt := modifier.NewScalar(modifier.KindOverride, 5, 21)
	mustAddModifier(strength, belt)
	show("With belt of giant strength:")

	strength.RemoveModifier(belt)
	mustAddModifier(hp, modifier.NewScalar(modifier.KindAdd, 0, -5))
	show("Belt removed, took 5 damage:")

	// closing the loop is refused
	if strength.AddDependency(damage, nil) {
		log.Println("Unexpected: cycle strength -> damage was accepted")
	}

	return []*property.Property{strength, strMod, proficiency, damage, hp}
}

func mustAddModifier(p *property.Property, m *modifier.Modifier) {
	if err := p.AddModifier(m); err != nil {
		log.Fatalf("Failed to add modifier %s to %s: %v", m, p.ID(), err)
	}
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	opts, err := cfg.Options()
	if err != nil {
		log.Printf("Failed to parse Redis config: %v", err)
		log.Println("Falling back to in-memory repository")
		return nil
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		log.Println("Falling back to in-memory repository")
		_ = client.Close()
		return nil
	}
	return client
}
