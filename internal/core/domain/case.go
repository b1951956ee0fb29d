package domain

import "time"

// CaseStatus is the lifecycle state of an investigation.
type CaseStatus string

const (
	CaseOpen       CaseStatus = "open"
	CaseInProgress CaseStatus = "in_progress"
	CaseClosed     CaseStatus = "closed"
	CaseArchived   CaseStatus = "archived"
)

// Priority ranks cases.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Case is an investigation that owns evidence items and reports.
type Case struct {
	ID             int64      `json:"id"                        yaml:"id"`
	CaseNumber     string     `json:"case_number"               yaml:"case_number"`
	Title          string     `json:"title"                     yaml:"title"`
	Description    string     `json:"description,omitempty"     yaml:"description,omitempty"`
	Status         CaseStatus `json:"status"                    yaml:"status"`
	Priority       Priority   `json:"priority"                  yaml:"priority"`
	AssignedTo     *int64     `json:"assigned_to,omitempty"     yaml:"assigned_to,omitempty"`
	IncidentDate   *time.Time `json:"incident_date,omitempty"   yaml:"incident_date,omitempty"`
	Location       string     `json:"location,omitempty"        yaml:"location,omitempty"`
	ClientName     string     `json:"client_name,omitempty"     yaml:"client_name,omitempty"`
	ClientContact  string     `json:"client_contact,omitempty"  yaml:"client_contact,omitempty"`
	CreatedBy      int64      `json:"created_by"                yaml:"created_by"`
	CreatedAt      time.Time  `json:"created_at"                yaml:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"      yaml:"updated_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"       yaml:"closed_at,omitempty"`
	CreatedByUser  *User      `json:"created_by_user,omitempty" yaml:"created_by_user,omitempty"`
	AssignedToUser *User      `json:"assigned_to_user,omitempty" yaml:"assigned_to_user,omitempty"`
}

// CaseInput is the payload for creating or updating a case. On update, zero
// values are omitted and left unchanged by the backend.
type CaseInput struct {
	Title         string     `json:"title,omitempty"          validate:"required"`
	Description   string     `json:"description,omitempty"`
	Status        CaseStatus `json:"status,omitempty"         validate:"omitempty,oneof=open in_progress closed archived"`
	Priority      Priority   `json:"priority,omitempty"       validate:"omitempty,oneof=low medium high critical"`
	AssignedTo    *int64     `json:"assigned_to,omitempty"`
	IncidentDate  *time.Time `json:"incident_date,omitempty"`
	Location      string     `json:"location,omitempty"`
	ClientName    string     `json:"client_name,omitempty"`
	ClientContact string     `json:"client_contact,omitempty"`
}

// CaseFilter narrows GET /cases.
type CaseFilter struct {
	Skip         int
	Limit        int
	Status       CaseStatus
	AssignedToMe bool
}

// DashboardStats are the headline counters of GET /cases/dashboard.
type DashboardStats struct {
	TotalCases      int `json:"total_cases"      yaml:"total_cases"`
	ActiveEvidence  int `json:"active_evidence"  yaml:"active_evidence"`
	PendingActions  int `json:"pending_actions"  yaml:"pending_actions"`
	IntegrityAlerts int `json:"integrity_alerts" yaml:"integrity_alerts"`
}

// RecentActivity is one line of the dashboard activity feed.
type RecentActivity struct {
	ID           int64  `json:"id"            yaml:"id"`
	Action       string `json:"action"        yaml:"action"`
	CaseNumber   string `json:"case_number"   yaml:"case_number"`
	Officer      string `json:"officer"       yaml:"officer"`
	TimeAgo      string `json:"time_ago"      yaml:"time_ago"`
	ActivityType string `json:"activity_type" yaml:"activity_type"`
}

// DashboardData is the response of GET /cases/dashboard.
type DashboardData struct {
	Stats            DashboardStats   `json:"stats"             yaml:"stats"`
	RecentActivities []RecentActivity `json:"recent_activities" yaml:"recent_activities"`
}

// ListOptions is the skip/limit pagination every list endpoint accepts.
type ListOptions struct {
	Skip  int
	Limit int
}

// StatusMessage is the body of delete endpoints.
type StatusMessage struct {
	Message string `json:"message" yaml:"message"`
}

// Health is the body of the backend's unauthenticated /health endpoint.
type Health struct {
	Status    string `json:"status"              yaml:"status"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"   yaml:"version,omitempty"`
}
