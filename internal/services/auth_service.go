package services

import (
	"context"
	"time"

	"libris/internal/auth"
	"libris/internal/domain"
	"libris/internal/repos"
)

type AuthService struct {
	Users *repos.UserRepo
	JWT   *auth.JWTService
}

func NewAuthService(users *repos.UserRepo, jwt *auth.JWTService) *AuthService {
	return &AuthService{Users: users, JWT: jwt}
}

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// Login checks credentials and issues an access token. Unknown email and
// wrong password both yield ErrBadCreds.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if repos.IsUserNotFound(err) {
		return Session{}, domain.ErrBadCreds
	}
	if err != nil {
		return Session{}, err
	}
	if !auth.CheckPassword(u.Hash, password) {
		return Session{}, domain.ErrBadCreds
	}
	token, exp, err := s.JWT.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate turns a bearer token into a principal.
func (s *AuthService) Authenticate(token string) (domain.Principal, error) {
	claims, err := s.JWT.Validate(token)
	if err != nil {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return domain.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, p domain.Principal) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, p.UserID)
	if repos.IsUserNotFound(err) {
		return nil, domain.ErrUnauthorized
	}
	return u, err
}
