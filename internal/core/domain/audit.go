package domain

import "time"

// AuditLog records one action taken by a user.
type AuditLog struct {
	ID         int64     `json:"id"                    yaml:"id"`
	UserID     int64     `json:"user_id"               yaml:"user_id"`
	Action     string    `json:"action"                yaml:"action"`
	EntityType string    `json:"entity_type,omitempty" yaml:"entity_type,omitempty"`
	EntityID   *int64    `json:"entity_id,omitempty"   yaml:"entity_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"             yaml:"timestamp"`
	IPAddress  string    `json:"ip_address,omitempty"  yaml:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"  yaml:"user_agent,omitempty"`
	Details    string    `json:"details,omitempty"     yaml:"details,omitempty"`
}

// AuditFilter narrows GET /audit-logs. Zero values are not sent.
type AuditFilter struct {
	Skip       int
	Limit      int
	UserID     int64
	Action     string
	EntityType string
	StartDate  time.Time
	EndDate    time.Time
}

// DefaultRecentLimit is the page size of GET /audit-logs/recent.
const DefaultRecentLimit = 50

// Actor is the authenticated caller of a development backend operation.
type Actor struct {
	User      *User
	IPAddress string
	UserAgent string
}

// HasRole reports whether the actor holds one of roles.
func (a Actor) HasRole(roles ...string) bool {
	if a.User == nil {
		return false
	}
	for _, r := range roles {
		if a.User.Role == r {
			return true
		}
	}
	return false
}
