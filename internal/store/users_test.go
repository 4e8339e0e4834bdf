package store

import (
	"context"
	"testing"
	"time"
)

func TestCheckAdminDecisions(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateAdmin("admin@x.tn", "hashed"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if d := s.CheckAdmin(ctx, "admin@x.tn"); d != DecisionAuthorized {
		t.Errorf("known admin: decision = %v, want authorized", d)
	}
	// Lookup is case-insensitive, matching login.
	if d := s.CheckAdmin(ctx, "ADMIN@X.TN"); d != DecisionAuthorized {
		t.Errorf("case-insensitive admin: decision = %v, want authorized", d)
	}
	if d := s.CheckAdmin(ctx, "stranger@x.tn"); d != DecisionUnauthorized {
		t.Errorf("unknown user: decision = %v, want unauthorized", d)
	}
}

// An expired deadline must never authorize.
func TestCheckAdminFailsClosedOnDeadline(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateAdmin("admin@x.tn", "hashed"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if d := s.CheckAdmin(ctx, "admin@x.tn"); d != DecisionError {
		t.Errorf("expired context: decision = %v, want error", d)
	}
}

func TestCheckAdminFailsClosedOnClosedStore(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateAdmin("admin@x.tn", "hashed"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if d := s.CheckAdmin(ctx, "admin@x.tn"); d != DecisionError {
		t.Errorf("closed store: decision = %v, want error", d)
	}
}
