package domain

import "time"

// CustodyRecord is one entry of an evidence item's chain of custody.
type CustodyRecord struct {
	ID              int64     `json:"id"                         yaml:"id"`
	EvidenceID      int64     `json:"evidence_id"                yaml:"evidence_id"`
	HandlerID       int64     `json:"handler_id"                 yaml:"handler_id"`
	Action          string    `json:"action"                     yaml:"action"`
	Location        string    `json:"location,omitempty"         yaml:"location,omitempty"`
	Purpose         string    `json:"purpose,omitempty"          yaml:"purpose,omitempty"`
	Notes           string    `json:"notes,omitempty"            yaml:"notes,omitempty"`
	TransferredFrom *int64    `json:"transferred_from,omitempty" yaml:"transferred_from,omitempty"`
	TransferredTo   *int64    `json:"transferred_to,omitempty"   yaml:"transferred_to,omitempty"`
	Timestamp       time.Time `json:"timestamp"                  yaml:"timestamp"`
	HandlerUser     *User     `json:"handler_user,omitempty"     yaml:"handler_user,omitempty"`
}

// CustodyInput is the payload of POST /chain-of-custody.
type CustodyInput struct {
	EvidenceID      int64  `json:"evidence_id"                validate:"required"`
	Action          string `json:"action"                     validate:"required"`
	Location        string `json:"location,omitempty"`
	Purpose         string `json:"purpose,omitempty"`
	Notes           string `json:"notes,omitempty"`
	TransferredFrom *int64 `json:"transferred_from,omitempty"`
	TransferredTo   *int64 `json:"transferred_to,omitempty"`
}

// TransferInput carries the query parameters of POST /chain-of-custody/transfer.
type TransferInput struct {
	EvidenceID    int64
	TransferredTo int64
	Location      string
	Purpose       string
	Notes         string
}

// CustodyFilter narrows GET /chain-of-custody.
type CustodyFilter struct {
	Skip       int
	Limit      int
	EvidenceID int64
}
