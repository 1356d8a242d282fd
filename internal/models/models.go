package models

import (
	"time"
)

// Session status values. A session is created active and ends exactly once.
const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

// Message roles within a chat session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Escalation attempt results.
const (
	EscalationPending = "pending"
	EscalationSuccess = "success"
	EscalationFailed  = "failed"
)

// EmergencyContact is the person we call when a session escalates.
type EmergencyContact struct {
	Name         string `db:"emergency_contact_name" json:"name"`
	Relationship string `db:"emergency_contact_relationship" json:"relationship"`
	PhoneNumber  string `db:"emergency_contact_phone" json:"phoneNumber"`
}

// User represents an authenticated user of the system.
type User struct {
	ID               string           `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	Email            string           `db:"email" json:"email"`
	PasswordHash     string           `db:"password_hash" json:"-"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// Message is one turn of a chat session, stored inline with the session.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession represents one bounded conversation. Messages are append-only
// while the session is active; Summary, SeverityRating and EndedAt are
// written exactly once, at the end transition.
type ChatSession struct {
	ID                  string     `db:"id" json:"id"`
	UserID              string     `db:"user_id" json:"userId"`
	Messages            []Message  `db:"messages" json:"messages"`
	Status              string     `db:"status" json:"status"` // active | ended
	Summary             string     `db:"summary" json:"summary,omitempty"`
	SeverityRating      int        `db:"severity_rating" json:"severityRating,omitempty"` // 1-5, set at closure
	EscalationTriggered bool       `db:"escalation_triggered" json:"escalationTriggered"`
	StartedAt           time.Time  `db:"started_at" json:"startedAt"`
	EndedAt             *time.Time `db:"ended_at" json:"endedAt,omitempty"`
}

// EscalationLog is the append-only audit record of one outbound emergency
// notification attempt. Result is written once when the attempt settles.
type EscalationLog struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"userId"`
	SessionID         string    `db:"session_id" json:"sessionId"`
	SeverityRating    int       `db:"severity_rating" json:"severityRating"`
	PhoneNumberCalled string    `db:"phone_number_called" json:"phoneNumberCalled"`
	CallSid           string    `db:"call_sid" json:"callSid,omitempty"` // provider call id, empty in simulated mode
	Result            string    `db:"result" json:"result"`              // pending | success | failed
	ErrorMessage      string    `db:"error_message" json:"errorMessage,omitempty"`
	UserName          string    `db:"user_name" json:"userName"`
	TriggeredAt       time.Time `db:"triggered_at" json:"triggeredAt"`
}
