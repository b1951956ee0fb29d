package domain

import "time"

// EvidenceType classifies an evidence item.
type EvidenceType string

const (
	EvidenceDigital  EvidenceType = "digital"
	EvidencePhysical EvidenceType = "physical"
	EvidenceDocument EvidenceType = "document"
	EvidenceImage    EvidenceType = "image"
	EvidenceVideo    EvidenceType = "video"
	EvidenceAudio    EvidenceType = "audio"
	EvidenceLog      EvidenceType = "log"
	EvidenceOther    EvidenceType = "other"
)

// EvidenceStatus is the processing state of an evidence item.
type EvidenceStatus string

const (
	EvidenceCollected EvidenceStatus = "collected"
	EvidenceAnalyzed  EvidenceStatus = "analyzed"
	EvidenceProcessed EvidenceStatus = "processed"
	EvidenceArchived  EvidenceStatus = "archived"
)

// Evidence is an item collected for a case, optionally with an attached file.
type Evidence struct {
	ID                 int64          `json:"id"                            yaml:"id"`
	EvidenceNumber     string         `json:"evidence_number"               yaml:"evidence_number"`
	CaseID             int64          `json:"case_id"                       yaml:"case_id"`
	Title              string         `json:"title"                         yaml:"title"`
	Description        string         `json:"description,omitempty"         yaml:"description,omitempty"`
	EvidenceType       EvidenceType   `json:"evidence_type"                 yaml:"evidence_type"`
	Status             EvidenceStatus `json:"status"                        yaml:"status"`
	CollectionLocation string         `json:"collection_location,omitempty" yaml:"collection_location,omitempty"`
	CollectionMethod   string         `json:"collection_method,omitempty"   yaml:"collection_method,omitempty"`
	FileName           string         `json:"file_name,omitempty"           yaml:"file_name,omitempty"`
	FileSize           int64          `json:"file_size,omitempty"           yaml:"file_size,omitempty"`
	FileHash           string         `json:"file_hash,omitempty"           yaml:"file_hash,omitempty"`
	MimeType           string         `json:"mime_type,omitempty"           yaml:"mime_type,omitempty"`
	CollectedBy        int64          `json:"collected_by"                  yaml:"collected_by"`
	CollectedAt        time.Time      `json:"collected_at"                  yaml:"collected_at"`
	CreatedAt          time.Time      `json:"created_at"                    yaml:"created_at"`
	UpdatedAt          *time.Time     `json:"updated_at,omitempty"          yaml:"updated_at,omitempty"`
}

// EvidenceInput is the payload for creating or updating an evidence item.
type EvidenceInput struct {
	CaseID             int64          `json:"case_id,omitempty"             validate:"required"`
	Title              string         `json:"title,omitempty"               validate:"required"`
	Description        string         `json:"description,omitempty"`
	EvidenceType       EvidenceType   `json:"evidence_type,omitempty"       validate:"required,oneof=digital physical document image video audio log other"`
	Status             EvidenceStatus `json:"status,omitempty"              validate:"omitempty,oneof=collected analyzed processed archived"`
	CollectionLocation string         `json:"collection_location,omitempty"`
	CollectionMethod   string         `json:"collection_method,omitempty"`
}

// EvidenceFilter narrows GET /evidence.
type EvidenceFilter struct {
	Skip         int
	Limit        int
	CaseID       int64
	EvidenceType EvidenceType
	Status       EvidenceStatus
}

// FileUpload is the response of POST /evidence/{id}/upload.
type FileUpload struct {
	Filename    string `json:"filename"     yaml:"filename"`
	ContentType string `json:"content_type" yaml:"content_type"`
	FileSize    int64  `json:"file_size"    yaml:"file_size"`
	FileHash    string `json:"file_hash"    yaml:"file_hash"`
}

// IntegrityReport is the response of POST /evidence/{id}/verify-integrity.
type IntegrityReport struct {
	EvidenceID        int64  `json:"evidence_id"        yaml:"evidence_id"`
	EvidenceNumber    string `json:"evidence_number"    yaml:"evidence_number"`
	IntegrityVerified bool   `json:"integrity_verified" yaml:"integrity_verified"`
	OriginalHash      string `json:"original_hash"      yaml:"original_hash"`
	CurrentHash       string `json:"current_hash"       yaml:"current_hash"`
	CheckedAt         string `json:"checked_at"         yaml:"checked_at"`
}

// Download is a binary payload fetched from a download endpoint.
type Download struct {
	Filename    string
	ContentType string
	Content     []byte
}
