package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/sahilchouksey/learnhub-api/database/dbtest"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
)

func TestBlacklistRevokeAndCleanup(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	user := model.User{Email: "bl@example.com", Username: "bl", PasswordHash: "x", Name: "BL"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	svc := auth.NewBlacklistService(db)

	if err := svc.RevokeToken(ctx, "live-jti", user.ID, time.Now().Add(time.Hour), "logout"); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// revoking twice is a no-op
	if err := svc.RevokeToken(ctx, "live-jti", user.ID, time.Now().Add(time.Hour), "logout"); err != nil {
		t.Fatalf("RevokeToken again: %v", err)
	}
	if err := svc.RevokeToken(ctx, "old-jti", user.ID, time.Now().Add(-time.Hour), "logout"); err != nil {
		t.Fatalf("RevokeToken old: %v", err)
	}

	revoked, err := svc.IsTokenRevoked(ctx, "live-jti")
	if err != nil || !revoked {
		t.Fatalf("live-jti revoked = %v, %v", revoked, err)
	}
	revoked, _ = svc.IsTokenRevoked(ctx, "old-jti")
	if revoked {
		t.Fatalf("expired entry should not count as revoked")
	}

	removed, err := svc.CleanupExpiredTokens(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("CleanupExpiredTokens = %d, %v", removed, err)
	}
}

func TestRevokeAllUserTokensBumpsVersion(t *testing.T) {
	db := dbtest.New(t)
	user := model.User{Email: "v@example.com", Username: "v", PasswordHash: "x", Name: "V"}
	db.Create(&user)

	if err := auth.NewBlacklistService(db).RevokeAllUserTokens(context.Background(), user.ID); err != nil {
		t.Fatalf("RevokeAllUserTokens: %v", err)
	}

	var reloaded model.User
	db.First(&reloaded, user.ID)
	if reloaded.TokenVersion != 1 {
		t.Fatalf("TokenVersion = %d, want 1", reloaded.TokenVersion)
	}
}
