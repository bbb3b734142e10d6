package services_test

import (
	"errors"
	"testing"

	"stash/internal/domain"
	"stash/internal/repos"
	"stash/internal/services"
)

func TestLoginFailuresAreUnauthorized(t *testing.T) {
	db := memdb(t)
	auth := &services.AuthService{Users: repos.NewUserRepo(db)}

	_, err := auth.Login("sid-1", "alice@stash.test", "wrong-pass")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("bad password: want ErrUnauthorized, got %v", err)
	}
	_, err = auth.Login("sid-1", "nobody@stash.test", "Passw0rd!")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown account: want ErrUnauthorized, got %v", err)
	}
}

func TestSessionBindResolveUnbind(t *testing.T) {
	db := memdb(t)
	auth := &services.AuthService{Users: repos.NewUserRepo(db)}

	if _, err := auth.CurrentUser("sid-unknown"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown sid: want ErrUnauthorized, got %v", err)
	}

	if _, err := auth.Login("sid-1", "alice@stash.test", "Passw0rd!"); err != nil {
		t.Fatal(err)
	}
	u, err := auth.CurrentUser("sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u-alice" {
		t.Fatalf("resolved wrong user: %+v", u)
	}

	if err := auth.Logout("sid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.CurrentUser("sid-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("sid after logout: want ErrUnauthorized, got %v", err)
	}
}
