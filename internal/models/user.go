package models

import (
	"strings"
	"time"
)

// MaxLoginKey bounds the randomly drawn URL-login keys for external users.
const MaxLoginKey = 1<<31 - 1

// UserProfile is an evaluation platform account. Delegates may manage the
// user's courses on their behalf; cc users receive a copy of all mail sent to
// the user without gaining any rights.
type UserProfile struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:255;index" json:"email"`
	Title     string `gorm:"size:255" json:"title"`
	FirstName string `gorm:"size:255" json:"first_name"`
	LastName  string `gorm:"size:255" json:"last_name"`

	IsStaff bool `gorm:"not null;default:false" json:"is_staff"`

	Delegates []UserProfile `gorm:"many2many:user_delegates;joinForeignKey:UserID;joinReferences:DelegateID" json:"-"`
	CCUsers   []UserProfile `gorm:"many2many:user_cc_users;joinForeignKey:UserID;joinReferences:CCUserID" json:"-"`

	LoginKey           *int       `gorm:"uniqueIndex" json:"-"`
	LoginKeyValidUntil *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName renders "title first last", falling back to the username when no
// last name is known.
func (u UserProfile) FullName() string {
	if u.LastName == "" {
		return u.Username
	}

	name := u.LastName
	if u.FirstName != "" {
		name = u.FirstName + " " + name
	}
	if u.Title != "" {
		name = u.Title + " " + name
	}
	return name
}

// HasEmail reports whether the user can receive mail at all.
func (u UserProfile) HasEmail() bool {
	return strings.TrimSpace(u.Email) != ""
}

// IsExternal reports whether the user's mail domain is outside the given
// internal domains. Users without an email address are always external.
func (u UserProfile) IsExternal(internalDomains []string) bool {
	if !u.HasEmail() {
		return true
	}

	address := strings.ToLower(strings.TrimSpace(u.Email))
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return true
	}

	domain := address[at+1:]
	for _, internal := range internalDomains {
		if domain == strings.ToLower(strings.TrimSpace(internal)) {
			return false
		}
	}
	return true
}

// LoginKeyValid reports whether the user's login key may still be used today.
func (u UserProfile) LoginKeyValid(today time.Time) bool {
	if u.LoginKey == nil || u.LoginKeyValidUntil == nil {
		return false
	}
	return !truncateToDay(today).After(truncateToDay(*u.LoginKeyValidUntil))
}
