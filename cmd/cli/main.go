package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yourorg/chairtime/internal/infrastructure/logger"
	"github.com/yourorg/chairtime/internal/security/auth"
	"github.com/yourorg/chairtime/pkg/config"
	"github.com/yourorg/chairtime/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "migrate":
		err = runMigrate(args)
	case "seed":
		err = runSeed(args)
	case "token":
		err = runToken(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`chairtime admin CLI

Usage:
  chairtime migrate              apply the database schema
  chairtime seed [-slug demo]    create a demo tenant with staff, a service and weekday schedules
  chairtime token -tenant <id>   mint a staff JWT for local testing`)
}

func openDB(ctx context.Context) (*database.ConnectionPool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewLogger(cfg.LogLevel)

	return database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
}

func runMigrate(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool.GetDB()); err != nil {
		return err
	}
	fmt.Println("schema applied")
	return nil
}

func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	slug := fs.String("slug", "demo", "tenant slug")
	timezone := fs.String("timezone", "Europe/Berlin", "tenant timezone")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	db := pool.GetDB()

	var tenantID string
	err = db.QueryRowContext(ctx,
		`INSERT INTO tenants (slug, timezone) VALUES ($1, $2)
		 ON CONFLICT (slug) DO UPDATE SET timezone = EXCLUDED.timezone
		 RETURNING id`,
		*slug, *timezone,
	).Scan(&tenantID)
	if err != nil {
		return fmt.Errorf("failed to seed tenant: %w", err)
	}

	staffNames := []string{"Alex Fischer", "Robin Weber"}
	staffIDs := make([]string, 0, len(staffNames))
	for _, name := range staffNames {
		var id string
		err = db.QueryRowContext(ctx,
			`INSERT INTO staff (tenant_id, display_name) VALUES ($1, $2) RETURNING id`,
			tenantID, name,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to seed staff: %w", err)
		}
		staffIDs = append(staffIDs, id)
	}

	var serviceID string
	err = db.QueryRowContext(ctx,
		`INSERT INTO services (tenant_id, name, duration_minutes, buffer_after_minutes, price_cents)
		 VALUES ($1, 'Haircut', 30, 5, 3500) RETURNING id`,
		tenantID,
	).Scan(&serviceID)
	if err != nil {
		return fmt.Errorf("failed to seed service: %w", err)
	}

	// Monday through Friday, 09:00 to 17:00
	for _, staffID := range staffIDs {
		for weekday := 1; weekday <= 5; weekday++ {
			if err := seedSchedule(ctx, db, tenantID, staffID, weekday); err != nil {
				return err
			}
		}
	}

	fmt.Printf("seeded tenant %s (%s)\n", *slug, tenantID)
	fmt.Printf("  staff:   %v\n", staffIDs)
	fmt.Printf("  service: %s\n", serviceID)
	return nil
}

func seedSchedule(ctx context.Context, db *sql.DB, tenantID, staffID string, weekday int) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO schedules (tenant_id, staff_id, weekday, start_minute, end_minute)
		 VALUES ($1, $2, $3, 540, 1020)`,
		tenantID, staffID, weekday,
	)
	if err != nil {
		return fmt.Errorf("failed to seed schedule: %w", err)
	}
	return nil
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	tenantID := fs.String("tenant", "", "tenant id for the claims")
	userID := fs.String("user", "cli", "user id for the claims")
	role := fs.String("role", "staff", "role: staff, manager or admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	fs.Parse(args)

	if *tenantID == "" {
		return fmt.Errorf("-tenant is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tm := auth.NewTokenManager(cfg.JWTSecret, "chairtime")
	token, err := tm.GenerateToken(*tenantID, *userID, *role, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
