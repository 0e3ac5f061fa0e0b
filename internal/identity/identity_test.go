package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/okalkan/diziquiz/internal/kv"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	fileStore, err := kv.OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("open kv store: %v", err)
	}
	t.Cleanup(func() {
		_ = fileStore.Close()
	})
	return New(fileStore)
}

func TestLoginThenCurrent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id, err := s.Login(ctx, "  ayse  ")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if id.Username != "ayse" {
		t.Fatalf("expected trimmed username, got %q", id.Username)
	}
	if id.LoginDate.IsZero() {
		t.Fatalf("expected login date to be set")
	}

	got, ok, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !ok {
		t.Fatalf("expected an active identity")
	}
	if got.Username != "ayse" {
		t.Fatalf("expected username ayse, got %q", got.Username)
	}
}

func TestLoginValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, username := range []string{"", "a", "  a  ", "abcdefghijklmnopqrstu"} {
		if _, err := s.Login(ctx, username); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("username %q: expected ErrInvalidUsername, got %v", username, err)
		}
	}

	// Rejected logins must not create an identity.
	if _, ok, err := s.Current(ctx); err != nil || ok {
		t.Fatalf("expected anonymous state, got ok=%v err=%v", ok, err)
	}

	// 20 runes is the upper bound; case is preserved.
	id, err := s.Login(ctx, "AbcdefghijKlmnopqrst")
	if err != nil {
		t.Fatalf("login at max length: %v", err)
	}
	if id.Username != "AbcdefghijKlmnopqrst" {
		t.Fatalf("expected case-preserving username, got %q", id.Username)
	}
}

func TestLoginOverwritesPrevious(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if _, err := s.Login(ctx, "ayse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := s.Login(ctx, "mehmet"); err != nil {
		t.Fatalf("second login: %v", err)
	}
	got, ok, err := s.Current(ctx)
	if err != nil || !ok {
		t.Fatalf("current: ok=%v err=%v", ok, err)
	}
	if got.Username != "mehmet" {
		t.Fatalf("expected mehmet, got %q", got.Username)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout while anonymous: %v", err)
	}
	if _, err := s.Login(ctx, "ayse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, err := s.Current(ctx); err != nil || ok {
		t.Fatalf("expected anonymous after logout, got ok=%v err=%v", ok, err)
	}
}
