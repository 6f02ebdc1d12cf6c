package registry

import (
	"errors"
	"time"
)

// Result is the outcome label carried by a log entry.
type Result string

// Results defines the closed set of outcomes a log entry may carry.
const (
	ResultApproved   Result = "Aprovado"
	ResultRejected   Result = "Recusado"
	ResultMissingKey Result = "ERRO - Faltando chave"
	ResultKeyCreated Result = "CHAVE CRIADA"
	ResultKeyRemoved Result = "CHAVE REMOVIDA"
	ResultStarted    Result = "SERVIDOR INICIADO"
)

// IsVerification reports whether the result came from a verification request
// rather than an administrative or lifecycle event.
func (r Result) IsVerification() bool {
	switch r {
	case ResultApproved, ResultRejected, ResultMissingKey:
		return true
	}
	return false
}

const (
	// MissingKey is recorded in place of a key the request did not supply.
	MissingKey = "N/A"
	// SystemSource is the source of administrative entries.
	SystemSource = "system"
	// StartupKey is the key recorded with the server-started entry.
	StartupKey = "SYSTEM"
)

// Registry and verification errors.
var (
	ErrEmptyKey      = errors.New("key is empty")
	ErrAlreadyExists = errors.New("key already exists")
	ErrNotFound      = errors.New("key not found")
	ErrMissingKey    = errors.New("key missing from request")
)

// KeyRecord is the public projection of a registered key.
type KeyRecord struct {
	Key     string    `json:"key"`
	Active  bool      `json:"active"`
	Created time.Time `json:"created"`
}

// LogEntry is an immutable record of one verification or administrative event.
type LogEntry struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Result    Result    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"ip"` // caller address, "system" or the bind host
}

// Stats aggregates the retained log and the registry at query time.
type Stats struct {
	TotalKeys            int        `json:"totalKeys"`
	TotalVerifications   int        `json:"totalVerifications"` // every retained entry, administrative ones included
	VerificationsToday   int        `json:"verificationsToday"`
	ApprovedCount        int        `json:"approvedCount"`
	SuccessRate          int        `json:"successRate"`
	VerificationAttempts int        `json:"verificationAttempts"`
	RecentLogs           []LogEntry `json:"recentLogs"`
}
