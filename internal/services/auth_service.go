package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"stash/internal/domain"
	"stash/internal/repos"
)

// ErrBadCreds is what the login surface reports for every credential
// failure; it never says which half was wrong.
var ErrBadCreds = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)

// AuthService is the stand-in for the external identity provider: it
// resolves a sid cookie to a stable user id. Collection handlers consume
// only the resolved id.
type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

// CurrentUser resolves a sid to its bound user. An unbound or unknown
// sid is an identity failure, not a storage error.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(sid)
	if err != nil {
		return nil, fmt.Errorf("no identity bound to session: %w", domain.ErrUnauthorized)
	}
	return u, nil
}
