package domain

import "time"

// Session is the console's view of who is logged in. User is set only once
// Token has been validated against the backend.
type Session struct {
	User  *User
	Token string
	// ExpiresAt is read from the token's exp claim when it has one.
	ExpiresAt *time.Time
}

// Authenticated reports whether the session holds a validated user.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// LoginResult is what a login attempt hands back to the caller.
type LoginResult struct {
	Success bool
	User    *User
	Error   string
}

// DefaultLoginError is shown when the backend gives no usable detail.
const DefaultLoginError = "Login failed. Please try again."
