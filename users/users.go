package users

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/internal/utils"
)

// User is the authenticated principal as returned by the backend's /user/profile resource.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name,omitempty"`
	FirstName       string     `json:"first_name,omitempty"`
	LastName        string     `json:"last_name,omitempty"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Avatar          string     `json:"avatar,omitempty"`
	Locale          string     `json:"locale,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// DisplayName prefers the full name, then first/last, then the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Email
}

func (u *User) IsVerified() bool {
	return u != nil && u.EmailVerifiedAt != nil && !u.EmailVerifiedAt.IsZero()
}

// Clone returns a deep copy so cached views never alias a caller's record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.EmailVerifiedAt = utils.Clone(u.EmailVerifiedAt)
	c.CreatedAt = utils.Clone(u.CreatedAt)
	c.UpdatedAt = utils.Clone(u.UpdatedAt)
	return &c
}
