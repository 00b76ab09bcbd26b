package bootstrap

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zaqqye/gazetrack_backend/internal/config"
	"github.com/zaqqye/gazetrack_backend/internal/database"
	"github.com/zaqqye/gazetrack_backend/internal/services"
)

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesFirstAdmin", func(t *testing.T) {
		db, _ := database.OpenInMemory()
		if err := SeedAdmin(ctx, db, config.AdminConfig{Username: "admin", Password: "admin123"}, zap.NewNop()); err != nil {
			t.Fatalf("SeedAdmin: %v", err)
		}
		users := services.NewUserService(db, zap.NewNop())
		if _, err := users.Authenticate(ctx, "admin", "admin123"); err != nil {
			t.Errorf("seeded admin cannot log in: %v", err)
		}

		// a second run leaves the table alone
		if err := SeedAdmin(ctx, db, config.AdminConfig{Username: "other", Password: "other123"}, zap.NewNop()); err != nil {
			t.Fatalf("SeedAdmin: %v", err)
		}
		if n, _ := users.GetUserCount(ctx); n != 1 {
			t.Errorf("user count = %d, want 1", n)
		}
	})

	t.Run("WarnsWithoutCredentials", func(t *testing.T) {
		db, _ := database.OpenInMemory()
		core, logs := observer.New(zap.WarnLevel)
		if err := SeedAdmin(ctx, db, config.AdminConfig{}, zap.New(core)); err != nil {
			t.Fatalf("SeedAdmin: %v", err)
		}
		if logs.Len() != 1 {
			t.Errorf("expected one warning, got %d", logs.Len())
		}
		if n, _ := services.NewUserService(db, zap.NewNop()).GetUserCount(ctx); n != 0 {
			t.Errorf("no user should be created, got %d", n)
		}
	})
}

func TestEnsureStudy(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	cfg := config.StudyConfig{PrototypeURL: "https://figma.com/proto", PrototypeImagePath: "null"}

	first, err := EnsureStudy(ctx, db, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("EnsureStudy: %v", err)
	}
	if !strings.HasPrefix(first.Name, "Study - ") {
		t.Errorf("auto name = %q", first.Name)
	}
	if first.Description == nil || *first.Description != defaultStudyDescription {
		t.Errorf("description = %v", first.Description)
	}
	if first.PrototypeImagePath != nil {
		t.Errorf("literal null should leave the image unset, got %q", *first.PrototypeImagePath)
	}

	again, err := EnsureStudy(ctx, db, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("EnsureStudy: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("matching prototype should reuse study %d, got %d", first.ID, again.ID)
	}

	cfg.PrototypeURL = "https://figma.com/other"
	cfg.Name = "Second round"
	other, err := EnsureStudy(ctx, db, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("EnsureStudy: %v", err)
	}
	if other.ID == first.ID || other.Name != "Second round" {
		t.Errorf("expected a new study, got %+v", other)
	}
}
