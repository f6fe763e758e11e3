package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-account-service/internal/domain/repository"
	"github.com/oksasatya/go-jwt-account-service/internal/infrastructure/search"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/mailer"
	"github.com/oksasatya/go-jwt-account-service/pkg/metrics"
)

// Auditor records transition outcomes; implementations must not block the caller for long.
type Auditor interface {
	Record(ctx context.Context, ev search.AuditEvent)
}

// AuthService drives the account state machine against storage and hands mails off asynchronously.
type AuthService struct {
	Repo        repo.UserRepository
	Machine     *account.Machine
	Mailer      mailer.Mailer
	Audit       Auditor
	Logger      *logrus.Logger
	MailTimeout time.Duration

	mails sync.WaitGroup
}

func NewAuthService(r repo.UserRepository, m *account.Machine, ml mailer.Mailer, audit Auditor, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: r, Machine: m, Mailer: ml, Audit: audit, Logger: logger, MailTimeout: 15 * time.Second}
}

// Wait blocks until every queued mail hand-off has finished.
func (s *AuthService) Wait() { s.mails.Wait() }

// Register creates an unverified account and mails the confirmation link to the submitted address.
func (s *AuthService) Register(ctx context.Context, in account.Registration) error {
	var created entity.User
	err := s.Repo.InTx(ctx, func(ctx context.Context, tx repo.UserRepository) error {
		taken, err := tx.EmailTakenByOther(ctx, in.Email, "")
		if err != nil {
			return err
		}
		u, err := s.Machine.Register(in, taken)
		if err != nil {
			return err
		}
		if err := tx.Insert(ctx, &u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		if errors.Is(err, account.ErrValidation) {
			return err
		}
		return fmt.Errorf("register: %w", err)
	}

	helpers.LogInfo(s.Logger, "register: unverified user created", logrus.Fields{"user_id": created.ID, "email": in.Email})
	s.record(ctx, "register", "success", created.ID, in.Email)
	s.sendAsync(mailer.Message{
		Kind:      mailer.KindRegistrationConfirm,
		To:        *created.PendingEmail,
		Name:      created.Name,
		Token:     *created.VerificationToken,
		ExpiresAt: created.VerificationIssuedAt.Add(s.Machine.TTL()),
		TTL:       s.Machine.TTL(),
	})
	return nil
}

// ConfirmRegistration consumes a registration token and promotes the pending address.
func (s *AuthService) ConfirmRegistration(ctx context.Context, token string) error {
	var confirmed entity.User
	err := s.Repo.InTx(ctx, func(ctx context.Context, tx repo.UserRepository) error {
		u, err := s.loadByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		if u.PendingEmail == nil {
			return account.ErrNotFoundOrExpired
		}
		taken, err := tx.EmailTakenByOther(ctx, *u.PendingEmail, u.ID)
		if err != nil {
			return err
		}
		next, err := s.Machine.ConfirmRegistration(*u, token, taken)
		if err != nil {
			return err
		}
		if err := s.consume(ctx, tx, &next, token); err != nil {
			return err
		}
		confirmed = next
		return nil
	})
	switch {
	case err == nil:
		s.Logger.WithField("user_id", confirmed.ID).Info("verify: success")
		s.record(ctx, "verify", "success", confirmed.ID, confirmed.Email)
		return nil
	case errors.Is(err, account.ErrAlreadyExists):
		s.Logger.WithField("token", helpers.MaskToken(token)).Info("verify: email already registered")
		s.record(ctx, "verify", "exist", "", "")
		return err
	case errors.Is(err, account.ErrNotFoundOrExpired):
		s.Logger.WithField("token", helpers.MaskToken(token)).Info("verify: token not found")
		s.record(ctx, "verify", "not_found", "", "")
		return err
	default:
		return fmt.Errorf("verify: %w", err)
	}
}

// RequestPasswordReset issues a fresh reset token for the live address and mails it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var updated entity.User
	err := s.Repo.InTx(ctx, func(ctx context.Context, tx repo.UserRepository) error {
		u, err := tx.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return account.ErrNotFound
			}
			return err
		}
		next, err := s.Machine.RequestPasswordReset(*u)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			s.Logger.Info("reminder: user not found")
			return err
		}
		return fmt.Errorf("reminder: %w", err)
	}

	s.Logger.WithField("user_id", updated.ID).Info("reminder: reset token issued")
	s.record(ctx, "reminder", "success", updated.ID, updated.Email)
	s.sendAsync(mailer.Message{
		Kind:      mailer.KindPasswordReset,
		To:        updated.Email,
		Name:      updated.Name,
		Token:     *updated.VerificationToken,
		ExpiresAt: updated.VerificationIssuedAt.Add(s.Machine.TTL()),
		TTL:       s.Machine.TTL(),
	})
	return nil
}

// CheckResetToken reports whether token currently opens the reset form.
func (s *AuthService) CheckResetToken(ctx context.Context, token string) error {
	u, err := s.loadByToken(ctx, s.Repo, token)
	if err != nil {
		return err
	}
	if u.PendingEmail != nil {
		return account.ErrNotFoundOrExpired
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and stores the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := account.CheckPassword(newPassword); err != nil {
		return err
	}
	var reset entity.User
	err := s.Repo.InTx(ctx, func(ctx context.Context, tx repo.UserRepository) error {
		u, err := s.loadByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		next, err := s.Machine.ConfirmPasswordReset(*u, token, newPassword)
		if err != nil {
			return err
		}
		if err := s.consume(ctx, tx, &next, token); err != nil {
			return err
		}
		reset = next
		return nil
	})
	switch {
	case err == nil:
		s.Logger.WithField("user_id", reset.ID).Info("reset: password changed")
		s.record(ctx, "reset", "success", reset.ID, reset.Email)
		return nil
	case errors.Is(err, account.ErrNotFoundOrExpired):
		s.Logger.WithField("token", helpers.MaskToken(token)).Info("reset: token not found")
		s.record(ctx, "reset", "not_found", "", "")
		return err
	case errors.Is(err, account.ErrValidation):
		return err
	default:
		return fmt.Errorf("reset: %w", err)
	}
}

// Me returns the public view of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (entity.UserView, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return entity.UserView{}, account.ErrUnauthenticated
		}
		return entity.UserView{}, fmt.Errorf("me: %w", err)
	}
	return u.View(), nil
}

// UpdateProfile applies a profile patch; identity fields cannot be expressed by the patch.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, p account.ProfilePatch) (entity.UserView, error) {
	var updated entity.User
	err := s.Repo.InTx(ctx, func(ctx context.Context, tx repo.UserRepository) error {
		u, err := tx.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		updated = s.Machine.UpdateProfile(*u, p)
		return tx.Update(ctx, &updated)
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return entity.UserView{}, account.ErrUnauthenticated
		}
		return entity.UserView{}, fmt.Errorf("update profile: %w", err)
	}
	s.Logger.WithField("user_id", userID).Info("profile updated")
	return updated.View(), nil
}

func (s *AuthService) loadByToken(ctx context.Context, r repo.UserRepository, token string) (*entity.User, error) {
	if token == "" {
		return nil, account.ErrNotFoundOrExpired
	}
	notBefore := s.Machine.Now().Add(-s.Machine.TTL())
	u, err := r.GetByValidToken(ctx, token, notBefore)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, account.ErrNotFoundOrExpired
		}
		return nil, err
	}
	return u, nil
}

// consume writes next only if the token is still the one on record; a concurrent winner makes it stale.
func (s *AuthService) consume(ctx context.Context, tx repo.UserRepository, next *entity.User, token string) error {
	err := tx.UpdateConsumingToken(ctx, next, token)
	switch {
	case errors.Is(err, repo.ErrStaleToken):
		return account.ErrNotFoundOrExpired
	case errors.Is(err, repo.ErrDuplicateEmail):
		return account.ErrAlreadyExists
	default:
		return err
	}
}

func (s *AuthService) sendAsync(msg mailer.Message) {
	if s.Mailer == nil {
		return
	}
	s.mails.Add(1)
	go func() {
		defer s.mails.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.MailTimeout)
		defer cancel()
		if err := s.Mailer.Send(ctx, msg); err != nil {
			helpers.LogError(s.Logger, "mail hand-off failed", err, logrus.Fields{"kind": msg.Kind, "to": msg.To})
		}
	}()
}

func (s *AuthService) record(ctx context.Context, action, outcome, userID, email string) {
	metrics.AccountTransitions.WithLabelValues(action, outcome).Inc()
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, search.AuditEvent{
		Action:  action,
		Outcome: outcome,
		UserID:  userID,
		Email:   email,
		At:      s.Machine.Now(),
	})
}
