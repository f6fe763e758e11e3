package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
//
// While a registration is unverified, Email holds a random placeholder and the
// real address waits in PendingEmail.
type User struct {
	ID           string
	Name         string
	Email        string
	PendingEmail *string
	PasswordHash string

	EmailVerified   bool
	EmailVerifiedAt *time.Time

	VerificationToken    *string
	VerificationIssuedAt *time.Time

	Profile

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Profile holds the optional attributes editable through the profile update path.
type Profile struct {
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

// HasPendingToken reports whether a confirm or reset request is outstanding.
func (u *User) HasPendingToken() bool {
	return u.VerificationToken != nil
}

// UserView is the public representation returned to authenticated clients.
type UserView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerified   bool       `json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	NameKana        *string    `json:"name_kana"`
	Birthday        *string    `json:"birthday"`
	Gender          *string    `json:"gender"`
	ZipCode         *string    `json:"zip_cd"`
	PrefID          *int64     `json:"pref_id"`
	Address1        *string    `json:"address1"`
	Address2        *string    `json:"address2"`
	Address3        *string    `json:"address3"`
	PhoneNumber     *string    `json:"phone_number"`
	Memo            *string    `json:"memo"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// View strips credentials and pending token state from the user.
func (u *User) View() UserView {
	v := UserView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		EmailVerified:   u.EmailVerified,
		EmailVerifiedAt: u.EmailVerifiedAt,
		NameKana:        u.NameKana,
		Gender:          u.Gender,
		ZipCode:         u.ZipCode,
		PrefID:          u.PrefID,
		Address1:        u.Address1,
		Address2:        u.Address2,
		Address3:        u.Address3,
		PhoneNumber:     u.PhoneNumber,
		Memo:            u.Memo,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.Birthday != nil {
		s := u.Birthday.Format(DateLayout)
		v.Birthday = &s
	}
	return v
}

// DateLayout is the wire format of calendar dates such as birthdays.
const DateLayout = "2006-01-02"
