package account

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
)

// State is the verification/reset lifecycle position of a user.
type State int

const (
	StateUnverified State = iota
	StateVerified
	StateResetPending
)

func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateVerified:
		return "verified"
	case StateResetPending:
		return "reset_pending"
	default:
		return "unknown"
	}
}

// StateOf derives the lifecycle state from the stored columns.
func StateOf(u *entity.User) State {
	if u.PendingEmail != nil || !u.EmailVerified {
		return StateUnverified
	}
	if u.HasPendingToken() {
		return StateResetPending
	}
	return StateVerified
}

const (
	MinPasswordLength = 8
	MaxPasswordLength = 64
	// bcrypt refuses longer input
	MaxPasswordBytes = 72
)

// Hasher is the credential hashing capability the machine depends on.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Machine applies account transitions to user values. It never touches storage.
type Machine struct {
	tokens *TokenIssuer
	hasher Hasher
	now    func() time.Time
	ttl    time.Duration
}

// MachineOption customises a Machine.
type MachineOption func(*Machine)

// WithClock injects a custom time source.
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMachine builds a state machine hashing credentials with hasher.
func NewMachine(hasher Hasher, opts ...MachineOption) *Machine {
	m := &Machine{hasher: hasher, now: time.Now, ttl: VerificationTTL}
	for _, opt := range opts {
		opt(m)
	}
	m.tokens = NewTokenIssuer(m.now)
	return m
}

// Now returns the machine clock reading in UTC.
func (m *Machine) Now() time.Time { return m.now().UTC() }

// TTL returns the verification token lifetime.
func (m *Machine) TTL() time.Duration { return m.ttl }

// Registration is the input of the register transition.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified user. emailTaken reports whether a live row already owns Email.
func (m *Machine) Register(in Registration, emailTaken bool) (entity.User, error) {
	if emailTaken {
		return entity.User{}, NewValidationError("email", "has already been taken")
	}
	if err := CheckPassword(in.Password); err != nil {
		return entity.User{}, err
	}
	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		return entity.User{}, err
	}
	placeholder, err := m.tokens.Placeholder()
	if err != nil {
		return entity.User{}, err
	}
	tok, issued, err := m.tokens.Issue()
	if err != nil {
		return entity.User{}, err
	}
	pending := in.Email
	now := m.Now()
	return entity.User{
		ID:                   uuid.NewString(),
		Name:                 in.Name,
		Email:                placeholder,
		PendingEmail:         &pending,
		PasswordHash:         hash,
		EmailVerified:        false,
		VerificationToken:    &tok,
		VerificationIssuedAt: &issued,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// ConfirmRegistration promotes the pending address. realEmailTaken reports whether another
// row already owns the pending address; in that case u is returned untouched.
func (m *Machine) ConfirmRegistration(u entity.User, presented string, realEmailTaken bool) (entity.User, error) {
	if StateOf(&u) != StateUnverified || u.PendingEmail == nil {
		return u, ErrNotFoundOrExpired
	}
	if !IsValid(u.VerificationToken, u.VerificationIssuedAt, presented, m.Now(), m.ttl) {
		return u, ErrNotFoundOrExpired
	}
	if realEmailTaken {
		return u, ErrAlreadyExists
	}
	now := m.Now()
	u.Email = *u.PendingEmail
	u.PendingEmail = nil
	u.EmailVerified = true
	u.EmailVerifiedAt = &now
	clearToken(&u)
	u.UpdatedAt = now
	return u, nil
}

// RequestPasswordReset issues a fresh token, replacing any pending one.
// Email and verification state are left as they are.
func (m *Machine) RequestPasswordReset(u entity.User) (entity.User, error) {
	tok, issued, err := m.tokens.Issue()
	if err != nil {
		return u, err
	}
	u.VerificationToken = &tok
	u.VerificationIssuedAt = &issued
	u.UpdatedAt = m.Now()
	return u, nil
}

// ConfirmPasswordReset replaces the password hash when presented is the pending reset token.
func (m *Machine) ConfirmPasswordReset(u entity.User, presented, newPassword string) (entity.User, error) {
	if err := CheckPassword(newPassword); err != nil {
		return u, err
	}
	if u.PendingEmail != nil {
		// registration tokens cannot reset a password
		return u, ErrNotFoundOrExpired
	}
	if !IsValid(u.VerificationToken, u.VerificationIssuedAt, presented, m.Now(), m.ttl) {
		return u, ErrNotFoundOrExpired
	}
	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return u, err
	}
	now := m.Now()
	u.PasswordHash = hash
	u.EmailVerifiedAt = &now
	clearToken(&u)
	u.UpdatedAt = now
	return u, nil
}

// ProfilePatch lists the fields the profile update may change. Nil means "leave as is".
// Identity fields are not part of it.
type ProfilePatch struct {
	NameKana    *string
	Birthday    *time.Time
	Gender      *string
	ZipCode     *string
	PrefID      *int64
	Address1    *string
	Address2    *string
	Address3    *string
	PhoneNumber *string
	Memo        *string
}

// UpdateProfile applies the non-nil fields of p to u.
func (m *Machine) UpdateProfile(u entity.User, p ProfilePatch) entity.User {
	setIf(&u.NameKana, p.NameKana)
	setIf(&u.Birthday, p.Birthday)
	setIf(&u.Gender, p.Gender)
	setIf(&u.ZipCode, p.ZipCode)
	setIf(&u.PrefID, p.PrefID)
	setIf(&u.Address1, p.Address1)
	setIf(&u.Address2, p.Address2)
	setIf(&u.Address3, p.Address3)
	setIf(&u.PhoneNumber, p.PhoneNumber)
	setIf(&u.Memo, p.Memo)
	u.UpdatedAt = m.Now()
	return u
}

func setIf[T any](dst **T, v *T) {
	if v != nil {
		cp := *v
		*dst = &cp
	}
}

func clearToken(u *entity.User) {
	u.VerificationToken = nil
	u.VerificationIssuedAt = nil
}

// CheckPassword enforces the password length bounds in characters, and the
// hasher's byte limit for multi-byte input.
func CheckPassword(p string) error {
	n := utf8.RuneCountInString(p)
	if n < MinPasswordLength {
		return NewValidationError("password", "must be at least 8 characters long")
	}
	if n > MaxPasswordLength {
		return NewValidationError("password", "must be at most 64 characters long")
	}
	if len(p) > MaxPasswordBytes {
		return NewValidationError("password", "must be at most 72 bytes long")
	}
	return nil
}
