package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour, "test")
	id := uuid.New()
	token, err := m.GenerateToken(id, "Hana", []string{"product:view"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.OperatorID != id || claims.Name != "Hana" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if len(claims.Privileges) != 1 || claims.Privileges[0] != "product:view" {
		t.Errorf("privileges = %v", claims.Privileges)
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, _ := NewManager("one", time.Hour, "test").GenerateToken(uuid.Nil, "x", nil)
	if _, err := NewManager("two", time.Hour, "test").ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewManager("secret", time.Nanosecond, "test")
	token, _ := m.GenerateToken(uuid.New(), "x", nil)
	time.Sleep(1100 * time.Millisecond)
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateEmpty(t *testing.T) {
	if _, err := NewManager("s", 0, "t").ValidateToken(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}
