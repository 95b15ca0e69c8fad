package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"go-inventory-tracker/config"
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/pkg/jwt"
)

func TestIssueToken(t *testing.T) {
	cfg := config.JWTConfig{SecretKey: "test-secret", TokenTTL: time.Hour, Issuer: "test"}
	manager := jwt.NewManager(cfg.SecretKey, cfg.TokenTTL, cfg.Issuer)

	tests := []struct {
		name string
		opts tokenOptions
		want []string
	}{
		{"all by default", tokenOptions{name: "alice"}, middleware.AllPrivileges},
		{"read only", tokenOptions{name: "bob", readOnly: true}, middleware.ReadOnlyPrivileges},
		{"explicit list", tokenOptions{name: "carol", privileges: "product:view, dashboard:view,"}, []string{"product:view", "dashboard:view"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issueToken(cfg, tt.opts)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			claims, err := manager.ValidateToken(token)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if claims.Name != tt.opts.name || !reflect.DeepEqual(claims.Privileges, tt.want) {
				t.Errorf("claims = %+v", claims)
			}
		})
	}

	if _, err := issueToken(cfg, tokenOptions{name: "x", privileges: "a", readOnly: true}); err == nil {
		t.Error("expected conflicting flags to fail")
	}
}

func TestIssueTokenCommand(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "test-secret", TokenTTL: time.Hour}}
	root := newRootCmd(cfg)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"issue-token", "--name", "alice", "--ttl", "5m"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	token := strings.TrimSpace(out.String())
	claims, err := jwt.NewManager("test-secret", time.Hour, "").ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", ttl)
	}
}
