package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGateLoginAndVerify(t *testing.T) {
	gate, err := NewGate("qazmlp-secret", "token-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	token, err := gate.Login("qazmlp-secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := gate.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Role != "admin" {
		t.Errorf("unexpected role %q", claims.Role)
	}
}

func TestGateRejectsWrongPassword(t *testing.T) {
	gate, err := NewGate("qazmlp-secret", "token-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gate.Login("guess"); !errors.Is(err, ErrBadPassword) {
		t.Errorf("expected ErrBadPassword, got %v", err)
	}
}

func TestGateRequiresPassword(t *testing.T) {
	if _, err := NewGate("", "token-secret", time.Hour); err == nil {
		t.Fatal("expected empty password rejected")
	}
}
