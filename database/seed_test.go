package database_test

import (
	"testing"

	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/database/dbtest"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
)

func TestSeedAllIsIdempotent(t *testing.T) {
	auth.Cost = 4
	db := dbtest.New(t)
	opts := database.SeedOptions{AdminEmail: "Admin@Example.com", AdminPassword: "secret-password", SampleCatalog: true}

	for i := 0; i < 2; i++ {
		if err := database.RunSeeds(db, opts, nil); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	var admin model.User
	if err := db.Where("role = ?", model.RoleAdmin).First(&admin).Error; err != nil {
		t.Fatalf("admin not seeded: %v", err)
	}
	if admin.Email != "admin@example.com" {
		t.Fatalf("admin email = %q, want lowercased", admin.Email)
	}
	if auth.VerifyPassword(admin.PasswordHash, "secret-password") != nil {
		t.Fatal("admin password does not verify")
	}

	counts := map[string]struct {
		model interface{}
		want  int64
	}{
		"users":      {&model.User{}, 2}, // admin plus demo instructor
		"categories": {&model.Category{}, 5},
		"courses":    {&model.Course{}, 3},
		"lessons":    {&model.Lesson{}, 13},
	}
	for name, tc := range counts {
		var n int64
		if err := db.Model(tc.model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if n != tc.want {
			t.Errorf("%s = %d, want %d", name, n, tc.want)
		}
	}

	var previews int64
	db.Model(&model.Lesson{}).Where("is_preview = ?", true).Count(&previews)
	if previews != 3 {
		t.Errorf("preview lessons = %d, want one per course", previews)
	}
}

func TestSeedSkipsAdminWithoutCredentials(t *testing.T) {
	db := dbtest.New(t)
	if err := database.RunSeeds(db, database.SeedOptions{}, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var users, courses, blocks int64
	db.Model(&model.User{}).Count(&users)
	db.Model(&model.Course{}).Count(&courses)
	db.Model(&model.ContentBlock{}).Where("is_active = ?", true).Count(&blocks)
	if users != 0 || courses != 0 {
		t.Fatalf("users=%d courses=%d, want none", users, courses)
	}
	if blocks == 0 {
		t.Fatal("expected default content blocks")
	}
}
