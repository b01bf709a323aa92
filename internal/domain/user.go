package domain

import (
	"context"
	"strings"
	"time"
)

// MaxUsernameLength is the longest username accepted at sign-up and login.
const MaxUsernameLength = 100

// Permission names a capability that can be granted to a user.
type Permission string

const PermManageUsers Permission = "manageUsers"

// Perms is the set of capabilities granted to a user.
type Perms struct {
	ManageUsers bool
}

// Has reports whether the permission is granted.
func (p Perms) Has(perm Permission) bool {
	switch perm {
	case PermManageUsers:
		return p.ManageUsers
	default:
		return false
	}
}

// User represents an account of the application.
type User struct {
	ID             int64
	Username       string
	Email          string
	FirstName      string
	LastName       string
	PasswordHash   string
	CreatedAt      time.Time
	LoginAttempts  int
	LastLoginAt    *time.Time
	NumberOfLogins int
	Perms          Perms
}

// Name is the display name of the user.
func (u *User) Name() string {
	return DisplayName(u.FirstName, u.LastName)
}

// UserRef is the read projection of a user joined onto events,
// registrations and feed items.
type UserRef struct {
	ID        int64
	FirstName string
	LastName  string
	Name      string
}

// NewUserRef builds a UserRef and derives its display name.
func NewUserRef(id int64, firstName, lastName string) *UserRef {
	return &UserRef{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Name:      DisplayName(firstName, lastName),
	}
}

// DisplayName joins first and last name.
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}

// UserCache deduplicates UserRef construction while transforming one
// result set. It is not safe for concurrent use and must not outlive the
// call that created it.
type UserCache struct {
	byID map[int64]*UserRef
}

// NewUserCache returns an empty cache.
func NewUserCache() *UserCache {
	return &UserCache{byID: make(map[int64]*UserRef)}
}

// GetOrPut returns the cached UserRef for id, or builds one from the
// candidate names, stores it and returns it. The candidate names are
// ignored when id is already cached.
func (c *UserCache) GetOrPut(id int64, firstName, lastName string) *UserRef {
	if u, ok := c.byID[id]; ok {
		return u
	}
	u := NewUserRef(id, firstName, lastName)
	c.byID[id] = u
	return u
}

// Len returns the number of distinct users cached.
func (c *UserCache) Len() int {
	return len(c.byID)
}

// UserPage is one page of the user listing.
type UserPage struct {
	Users   []User
	Total   int
	HasMore bool
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, limit int) (*UserPage, error)
	Count(ctx context.Context) (int, error)
	// Authenticate looks up the user by username and calls verify with the
	// stored password hash inside one transaction. On success the login
	// counters are reset and the user ID is returned; on failure the
	// attempt counter is incremented and 0 is returned.
	Authenticate(ctx context.Context, username string, verify func(passwordHash string) bool) (int64, error)
}
