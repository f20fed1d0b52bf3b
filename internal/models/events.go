package models

import "time"

// AttendeeRegisteredEvent is published to Kafka after a successful
// self-registration.
type AttendeeRegisteredEvent struct {
	AttendeeID   string    `json:"attendeeId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	TicketCode   string    `json:"ticketCode"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// AttendeeCheckedInEvent is published to Kafka by the check-in winner only;
// re-scans of an already checked-in attendee do not emit it.
type AttendeeCheckedInEvent struct {
	AttendeeID string    `json:"attendeeId"`
	FullName   string    `json:"fullName"`
	TicketCode string    `json:"ticketCode"`
	CheckinAt  time.Time `json:"checkinAt"`
}

func NewAttendeeRegisteredEvent(a Attendee) AttendeeRegisteredEvent {
	return AttendeeRegisteredEvent{
		AttendeeID:   a.ID,
		FullName:     a.FullName,
		Email:        a.Email,
		TicketCode:   a.TicketCode,
		RegisteredAt: a.RegisteredAt,
	}
}

func NewAttendeeCheckedInEvent(a Attendee) AttendeeCheckedInEvent {
	evt := AttendeeCheckedInEvent{
		AttendeeID: a.ID,
		FullName:   a.FullName,
		TicketCode: a.TicketCode,
	}
	if a.CheckinAt != nil {
		evt.CheckinAt = *a.CheckinAt
	}
	return evt
}
