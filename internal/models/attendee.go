package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Attendee is a registered conference participant. TicketCode is assigned at
// registration and never changes; CheckedIn/CheckinAt are only ever flipped by
// the check-in service, and CheckinAt is written exactly once.
type Attendee struct {
	bun.BaseModel `bun:"table:attendees"`

	ID               string     `bun:"id,pk" json:"id"`
	FullName         string     `bun:"full_name,notnull" json:"fullName"`
	Email            string     `bun:"email,unique,notnull" json:"email"`
	Phone            string     `bun:"phone,notnull" json:"phone"`
	Gender           string     `bun:"gender,nullzero" json:"gender,omitempty"`
	EmploymentStatus string     `bun:"employment_status,nullzero" json:"employmentStatus,omitempty"`
	JobTitle         string     `bun:"job_title,nullzero" json:"jobTitle,omitempty"`
	Employer         string     `bun:"employer,nullzero" json:"employer,omitempty"`
	Sector           string     `bun:"sector,nullzero" json:"sector,omitempty"`
	BirthDate        *time.Time `bun:"birth_date,nullzero" json:"birthDate,omitempty"`
	GradYear         string     `bun:"grad_year,nullzero" json:"gradYear,omitempty"`

	TicketCode string     `bun:"ticket_code,unique,notnull" json:"ticketCode"`
	CheckedIn  bool       `bun:"checked_in,notnull,default:false" json:"checkedIn"`
	CheckinAt  *time.Time `bun:"checkin_at,nullzero" json:"checkinAt,omitempty"`

	RegisteredAt time.Time `bun:"registered_at,notnull,default:current_timestamp" json:"registeredAt"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}
