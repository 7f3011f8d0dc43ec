package shared

import (
	"context"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_settings" {
			t.Errorf("expected first migration create_settings, got %s", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM settings LIMIT 1"); err != nil {
			t.Errorf("settings table should exist after migrations: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM uploads LIMIT 1"); err != nil {
			t.Errorf("uploads table should exist after migrations: %v", err)
		}

		version, err := CurrentVersion(ctx, db)
		if err != nil {
			t.Fatalf("CurrentVersion failed: %v", err)
		}
		if version != 1 {
			t.Errorf("expected version 1, got %d", version)
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM uploads LIMIT 1"); err == nil {
			t.Error("uploads table should be gone after rollback")
		}

		if version, _ := CurrentVersion(ctx, db); version != 0 {
			t.Errorf("expected version 0 after rollback, got %d", version)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		for i := range 2 {
			if err := RunMigrations(ctx, db); err != nil {
				t.Fatalf("failed to run migrations (pass %d): %v", i, err)
			}
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("Rollback with nothing applied", func(t *testing.T) {
		db, err := OpenDatabase(ctx, DatabaseConfig{Path: ":memory:", MaxOpenConns: 1})
		if err != nil {
			t.Fatalf("OpenDatabase failed: %v", err)
		}
		defer db.Close()

		for range 2 {
			if err := RollbackMigration(ctx, db); err != nil {
				t.Fatalf("rollback failed: %v", err)
			}
		}
		if err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected error when nothing is left to rollback")
		}
	})
}
