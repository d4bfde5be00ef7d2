package model

import (
	"database/sql/driver"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// ProfileStatus defined the list of possible profile statuses
type ProfileStatus string

const (
	// ProfileStatusActive when the profile is live on the platform
	ProfileStatusActive ProfileStatus = "active"
	// ProfileStatusDeleted when the profile was anonymized. The row is kept
	// because ledger entries and referral links still reference it
	ProfileStatusDeleted ProfileStatus = "deleted"
)

func (s ProfileStatus) String() string {
	return string(s)
}

// Role tags a profile with one of the marketplace roles
type Role string

const (
	RoleProvider Role = "provider"
	RoleConsumer Role = "consumer"
	RoleAgent    Role = "agent"
)

// RoleList is stored as a comma separated text column
type RoleList []Role

// Value implements driver.Valuer
func (r RoleList) Value() (driver.Value, error) {
	items := make([]string, len(r))
	for i, role := range r {
		items[i] = string(role)
	}
	return strings.Join(items, ","), nil
}

// Scan implements sql.Scanner
func (r *RoleList) Scan(value interface{}) error {
	if value == nil {
		*r = RoleList{}
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return errors.New("unsupported type for role list")
	}
	if raw == "" {
		*r = RoleList{}
		return nil
	}
	parts := strings.Split(raw, ",")
	list := make(RoleList, len(parts))
	for i, part := range parts {
		list[i] = Role(strings.TrimSpace(part))
	}
	*r = list
	return nil
}

// Has checks the role membership
func (r RoleList) Has(role Role) bool {
	for _, item := range r {
		if item == role {
			return true
		}
	}
	return false
}

// Profile represents one platform identity.
// ReferredByProfileID is write once: it is populated at creation by the
// identity binder and may never change afterwards. The only mutation path is
// queries.BindReferrer which guards the column with a conditional update.
type Profile struct {
	ID                  uint64        `gorm:"column:id;primaryKey" json:"id"`
	SignupRef           string        `gorm:"column:signup_ref" json:"-"`
	Email               string        `gorm:"column:email" json:"email"`
	DisplayName         string        `gorm:"column:display_name" json:"display_name"`
	ReferralCode        string        `gorm:"column:referral_code" json:"referral_code"`
	ReferredByProfileID *uint64       `gorm:"column:referred_by_profile_id" json:"referred_by_profile_id"`
	Roles               RoleList      `gorm:"column:roles;type:text" json:"roles"`
	Status              ProfileStatus `gorm:"column:status" json:"status"`
	CreatedAt           time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

// TableName godoc
func (Profile) TableName() string {
	return "profiles"
}

// IsAnonymized reports whether the profile was deleted and scrubbed.
// An anonymized profile never resolves as a referrer again
func (profile *Profile) IsAnonymized() bool {
	return profile.Status == ProfileStatusDeleted
}

// ReferralCodeAlphabet is the 62 symbol, case sensitive code alphabet
const ReferralCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewProfile creates a new profile structure with a freshly generated
// referral code. Uniqueness of the code is enforced by the store; the caller
// retries with a new code on collision
func NewProfile(signupRef, email, displayName string, roles RoleList, codeLength int) *Profile {
	return &Profile{
		SignupRef:    signupRef,
		Email:        email,
		DisplayName:  displayName,
		ReferralCode: GenerateReferralCode(codeLength),
		Roles:        roles,
		Status:       ProfileStatusActive,
	}
}

// GenerateReferralCode returns a random code of the given length drawn from
// the referral code alphabet
func GenerateReferralCode(n int) string {
	letters := []rune(ReferralCodeAlphabet)
	rand.Seed(time.Now().UnixNano())
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// Anonymize clears the profile's PII while keeping the referral linkage
// fields intact for ledger integrity
func (profile *Profile) Anonymize() {
	profile.Email = ""
	profile.DisplayName = ""
	profile.Status = ProfileStatusDeleted
}
