package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/desertthunder/edubrasil/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(context.Background(), shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// exerciseStore checks the key-value contract shared by every [Store].
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "musicFile"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "musicFile", "blob:one"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "musicFile", "blob:two"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	value, ok, err := store.Get(ctx, "musicFile")
	if err != nil || !ok || value != "blob:two" {
		t.Fatalf("expected blob:two, got %q ok=%v err=%v", value, ok, err)
	}

	if err := store.Remove(ctx, "musicFile"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "musicFile"); ok {
		t.Error("expected key to be removed")
	}
	if err := store.Remove(ctx, "musicFile"); err != nil {
		t.Errorf("removing a missing key should succeed: %v", err)
	}
}

func TestSettingRepository(t *testing.T) {
	t.Run("Contract", func(t *testing.T) {
		exerciseStore(t, NewSettingRepository(setupTestDB(t)))
	})

	t.Run("Survives reopen", func(t *testing.T) {
		ctx := context.Background()
		path := t.TempDir() + "/player.db"
		cfg := shared.DatabaseConfig{Path: path, MaxOpenConns: 1}

		db, err := shared.OpenDatabase(ctx, cfg)
		if err != nil {
			t.Fatalf("OpenDatabase failed: %v", err)
		}
		if err := NewSettingRepository(db).Set(ctx, "musicFile", "/srv/single.mp3"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		db.Close()

		db, err = shared.OpenDatabase(ctx, cfg)
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		defer db.Close()

		value, ok, err := NewSettingRepository(db).Get(ctx, "musicFile")
		if err != nil || !ok || value != "/srv/single.mp3" {
			t.Errorf("expected persisted value, got %q ok=%v err=%v", value, ok, err)
		}
	})

	t.Run("Closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSettingRepository(db)
		db.Close()

		if _, _, err := repo.Get(context.Background(), "musicFile"); err == nil {
			t.Error("expected error from closed database")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		store, err := OpenStore(ctx, cfg, setupTestDB(t))
		if err != nil {
			t.Fatalf("OpenStore failed: %v", err)
		}
		if _, ok := store.(*SettingRepository); !ok {
			t.Errorf("expected SettingRepository, got %T", store)
		}
	})

	t.Run("sqlite without database", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		if _, err := OpenStore(ctx, cfg, nil); !errors.Is(err, shared.ErrStorageUnavailable) {
			t.Errorf("expected ErrStorageUnavailable, got %v", err)
		}
	})

	t.Run("memory", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = shared.StorageMemory
		store, err := OpenStore(ctx, cfg, nil)
		if err != nil {
			t.Fatalf("OpenStore failed: %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("expected MemoryStore, got %T", store)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = "etcd"
		if _, err := OpenStore(ctx, cfg, nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestUploadRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Record and Get", func(t *testing.T) {
		repo := NewUploadRepository(setupTestDB(t))
		upload := models.NewUpload("blob:abc", "single.mp3", "audio/mpeg", 2048)

		if err := repo.Record(ctx, upload); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if upload.ID() == "" {
			t.Error("upload ID should be set after creation")
		}

		got, err := repo.Get(upload.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.URI() != "blob:abc" || got.Filename() != "single.mp3" || got.Size() != 2048 {
			t.Errorf("unexpected upload %+v", got)
		}
		if got.Revoked() {
			t.Error("new upload should not be revoked")
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewUploadRepository(setupTestDB(t))
		if err := repo.Create(models.NewUpload("", "x.mp3", "audio/mpeg", 1)); err == nil {
			t.Error("expected validation error for missing uri")
		}
	})

	t.Run("Duplicate URI", func(t *testing.T) {
		repo := NewUploadRepository(setupTestDB(t))
		if err := repo.Create(models.NewUpload("blob:dup", "a.mp3", "audio/mpeg", 1)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := repo.Create(models.NewUpload("blob:dup", "b.mp3", "audio/mpeg", 1)); err == nil {
			t.Error("expected unique constraint violation")
		}
	})

	t.Run("MarkRevoked", func(t *testing.T) {
		repo := NewUploadRepository(setupTestDB(t))
		_ = repo.Create(models.NewUpload("blob:rev", "a.mp3", "audio/mpeg", 1))

		if err := repo.MarkRevoked(ctx, "blob:rev"); err != nil {
			t.Fatalf("MarkRevoked failed: %v", err)
		}
		got, err := repo.GetByURI("blob:rev")
		if err != nil {
			t.Fatalf("GetByURI failed: %v", err)
		}
		if !got.Revoked() {
			t.Error("expected upload to be revoked")
		}

		if err := repo.MarkRevoked(ctx, "blob:rev"); err == nil {
			t.Error("expected error when revoking twice")
		}
		if err := repo.MarkRevoked(ctx, "blob:missing"); err == nil {
			t.Error("expected error for unknown uri")
		}
	})

	t.Run("List and Delete", func(t *testing.T) {
		repo := NewUploadRepository(setupTestDB(t))
		for _, uri := range []string{"blob:1", "blob:2", "blob:3"} {
			if err := repo.Create(models.NewUpload(uri, uri+".mp3", "audio/mpeg", 1)); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		all, err := repo.List(0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 uploads, got %d", len(all))
		}
		if all[0].URI() != "blob:3" {
			t.Errorf("expected newest first, got %s", all[0].URI())
		}

		limited, _ := repo.List(2)
		if len(limited) != 2 {
			t.Errorf("expected 2 uploads, got %d", len(limited))
		}

		if err := repo.Delete(all[0].ID()); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get(all[0].ID()); err == nil {
			t.Error("expected error when getting deleted upload")
		}
		if err := repo.Delete(all[0].ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})
}
