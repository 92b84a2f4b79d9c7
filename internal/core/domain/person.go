package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is the emergency contact block carried by every person.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

// Person represents a means-tested person in the local store. Identity fields
// are immutable; benefit and eligibility fields are mutated by the admin
// import process.
type Person struct {
	ID                 uuid.UUID
	Name               string
	NationalID         string
	MonthlyIncome      int64
	TotalAssets        int64
	EligibleFrom       *time.Time
	EligibleUntil      *time.Time
	EmergencyContact   EmergencyContact
	ReviewingAuthority string
	ReviewerName       string
	CreatedAt          time.Time
}
