package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"publazer/internal/config"
	"publazer/internal/models"
)

func testManager(secret string, expiry time.Duration) *JWTManager {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret, Expiry: expiry}}
	return NewJWTManager(cfg)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword("s3cret!", hash) {
		t.Error("expected password to match")
	}
	if CheckPassword("wrong", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestGenerateAndVerify(t *testing.T) {
	m := testManager("test-secret", time.Hour)
	user := &models.User{ID: uuid.New(), Email: "f@uni.edu", Role: models.RoleFaculty}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleFaculty || claims.Email != user.Email {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token id must be set")
	}
}

func TestVerifyRejects(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleStudent}
	good := testManager("secret-a", time.Hour)
	token, _ := good.GenerateToken(user)

	expired := testManager("secret-a", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, _ := expired.GenerateToken(user)

	tests := []struct {
		name  string
		m     *JWTManager
		token string
	}{
		{"wrong secret", testManager("secret-b", time.Hour), token},
		{"expired", good, oldToken},
		{"garbage", good, "not-a-token"},
		{"empty", good, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRevokerWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r := NewRevoker(client)
	ctx := context.Background()
	m := testManager("secret", time.Hour)
	token, _ := m.GenerateToken(&models.User{ID: uuid.New(), Role: models.RoleStudent})
	claims, _ := m.Verify(token)

	if r.IsRevoked(ctx, claims.ID) {
		t.Fatal("fresh token should not be revoked")
	}
	if err := r.Revoke(ctx, claims); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if !r.IsRevoked(ctx, claims.ID) {
		t.Fatal("token should be revoked")
	}

	mr.FastForward(2 * time.Hour)
	if r.IsRevoked(ctx, claims.ID) {
		t.Error("revocation should expire with the token")
	}
}

func TestRevokerWithoutRedis(t *testing.T) {
	r := NewRevoker(nil)
	if r.Enabled() {
		t.Fatal("revoker without client should be disabled")
	}
	if err := r.Revoke(context.Background(), &Claims{}); err != nil {
		t.Errorf("Revoke should be a no-op, got %v", err)
	}
	if r.IsRevoked(context.Background(), "any") {
		t.Error("nothing is revoked without redis")
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisClient failed: %v", err)
	}
	client.Close()

	if _, err := NewRedisClient(context.Background(), "://bad"); err == nil {
		t.Error("expected error for invalid url")
	}
}
