package store

import (
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	s := NewUserStore(db)

	u, err := s.Register("alice", "alice@x.com", "pw123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected persisted user id")
	}
	if u.HashedPassword == "pw123" {
		t.Fatalf("password stored in clear")
	}

	got, err := s.Authenticate("alice", "pw123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected username %s", got.Username)
	}
}

func TestAuthenticateFailuresCollapse(t *testing.T) {
	db := setupTestDB(t)
	s := NewUserStore(db)
	if _, err := s.Register("alice", "alice@x.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Wrong password and unknown username must fail identically.
	if _, err := s.Authenticate("alice", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials got %v", err)
	}
	if _, err := s.Authenticate("bob", "pw123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials got %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	db := setupTestDB(t)
	s := NewUserStore(db)
	if _, err := s.Register("alice", "alice@x.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := s.Register("alice", "other@x.com", "pw123"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username: expected ErrConflict got %v", err)
	}
	if _, err := s.Register("bob", "alice@x.com", "pw123"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: expected ErrConflict got %v", err)
	}
}

func TestByUsernameNotFound(t *testing.T) {
	db := setupTestDB(t)
	s := NewUserStore(db)
	if _, err := s.ByUsername("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
