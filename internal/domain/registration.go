package domain

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "PENDING"
	RegistrationStatusConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationStatusCancelled RegistrationStatus = "CANCELLED"
	RegistrationStatusAttended  RegistrationStatus = "ATTENDED"
)

var RegistrationStatuses = []RegistrationStatus{
	RegistrationStatusPending,
	RegistrationStatusConfirmed,
	RegistrationStatusCancelled,
	RegistrationStatusAttended,
}

// IsActive reports whether a registration in this status holds a seat.
func (s RegistrationStatus) IsActive() bool {
	return s != RegistrationStatusCancelled
}

type Registration struct {
	ID        string             `json:"id"`
	EventID   string             `json:"event_id"`
	UserID    string             `json:"user_id"`
	Status    RegistrationStatus `json:"status"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (r Registration) IsActive() bool {
	return r.Status.IsActive()
}

type RegistrationPatch struct {
	Status *RegistrationStatus
	Notes  *string
}

func (r *Registration) Apply(p RegistrationPatch) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}
