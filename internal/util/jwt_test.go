package util

import (
	"testing"
	"time"

	"team_collab_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		BaseModel: model.BaseModel{ID: 42},
		Email:     "user@test.local",
		Role:      model.Admin,
	}

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected userID 42, got %d", claims.UserID)
	}
	if claims.Role != model.Admin {
		t.Errorf("expected admin role, got %s", claims.Role)
	}
	if claims.Email != "user@test.local" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.Member}

	token, err := GenerateJWT(user, "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ParseJWT(token, "wrong-secret"); err == nil {
		t.Error("expected parse failure with wrong secret")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.Member}

	token, err := GenerateJWT(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Error("expected parse failure for expired token")
	}
}
