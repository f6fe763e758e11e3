package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	repo "github.com/oksasatya/go-jwt-account-service/internal/domain/repository"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/metrics"
)

// Blocklist stores revoked session token ids. Claim revokes jti only if it was
// not revoked already and reports whether this call did it.
type Blocklist interface {
	Add(ctx context.Context, jti string, until time.Time) error
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)
	Contains(ctx context.Context, jti string) (bool, error)
}

// SessionToken is returned by login and refresh.
type SessionToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SessionService issues and checks bearer tokens. Blocklist is optional; without it
// logout is a client-side discard and refreshed tokens stay usable until exp.
type SessionService struct {
	Repo      repo.UserRepository
	JWT       *helpers.JWTManager
	Hasher    account.Hasher
	Blocklist Blocklist
	Logger    *logrus.Logger
}

func NewSessionService(r repo.UserRepository, jwt *helpers.JWTManager, hasher account.Hasher, bl Blocklist, logger *logrus.Logger) *SessionService {
	return &SessionService{Repo: r, JWT: jwt, Hasher: hasher, Blocklist: bl, Logger: logger}
}

// ExpiresIn is the token lifetime in seconds, derived from whole minutes.
func (s *SessionService) ExpiresIn() int {
	return int(s.JWT.TTL/time.Minute) * 60
}

// Login checks the credentials of a verified user and issues a token.
func (s *SessionService) Login(ctx context.Context, email, password string) (SessionToken, error) {
	tok, err := s.login(ctx, email, password)
	if errors.Is(err, account.ErrNotVerifiedOrNotFound) || errors.Is(err, account.ErrBadCredentials) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
	} else if err == nil {
		metrics.LoginAttempts.WithLabelValues("success").Inc()
	}
	return tok, err
}

func (s *SessionService) login(ctx context.Context, email, password string) (SessionToken, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return SessionToken{}, account.ErrNotVerifiedOrNotFound
		}
		return SessionToken{}, fmt.Errorf("login: load user: %w", err)
	}
	if account.StateOf(u) == account.StateUnverified {
		return SessionToken{}, account.ErrNotVerifiedOrNotFound
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		s.Logger.WithField("user_id", u.ID).Info("login rejected: bad credentials")
		return SessionToken{}, account.ErrBadCredentials
	}
	tok, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return SessionToken{}, err
	}
	s.Logger.WithField("user_id", u.ID).Info("login success")
	return s.sessionToken(tok), nil
}

// Refresh exchanges a token still inside its refresh window for a new one.
// The old token is consumed atomically, so one token yields at most one successor.
func (s *SessionService) Refresh(ctx context.Context, tokenStr string) (SessionToken, error) {
	claims, err := s.JWT.ParseForRefresh(tokenStr)
	if err != nil {
		s.Logger.WithError(err).Debug("refresh rejected")
		return SessionToken{}, account.ErrUnauthenticated
	}
	if _, err := s.Repo.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return SessionToken{}, account.ErrUnauthenticated
		}
		return SessionToken{}, fmt.Errorf("refresh: load user: %w", err)
	}
	if s.Blocklist != nil {
		won, err := s.Blocklist.Claim(ctx, claims.ID, s.JWT.RevokeUntil(claims))
		if err != nil {
			return SessionToken{}, fmt.Errorf("refresh: consume token: %w", err)
		}
		if !won {
			s.Logger.WithField("user_id", claims.UserID).Info("refresh rejected: token already used or revoked")
			return SessionToken{}, account.ErrUnauthenticated
		}
	}
	tok, _, err := s.JWT.Generate(claims.UserID)
	if err != nil {
		return SessionToken{}, err
	}
	return s.sessionToken(tok), nil
}

// Logout revokes the token described by claims until it can neither
// authenticate nor be refreshed.
func (s *SessionService) Logout(ctx context.Context, claims *helpers.Claims) error {
	if claims == nil {
		return account.ErrUnauthenticated
	}
	if s.Blocklist == nil {
		return nil
	}
	if err := s.Blocklist.Add(ctx, claims.ID, s.JWT.RevokeUntil(claims)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.Logger.WithField("user_id", claims.UserID).Info("logout")
	return nil
}

// Authenticate verifies signature, expiry and revocation of a bearer token.
func (s *SessionService) Authenticate(ctx context.Context, tokenStr string) (*helpers.Claims, error) {
	claims, err := s.JWT.Parse(tokenStr)
	if err != nil {
		return nil, account.ErrUnauthenticated
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *SessionService) ensureNotRevoked(ctx context.Context, claims *helpers.Claims) error {
	if s.Blocklist == nil {
		return nil
	}
	revoked, err := s.Blocklist.Contains(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return account.ErrUnauthenticated
	}
	return nil
}

func (s *SessionService) sessionToken(tok string) SessionToken {
	return SessionToken{AccessToken: tok, TokenType: "bearer", ExpiresIn: s.ExpiresIn()}
}
