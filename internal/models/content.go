package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Speaker struct {
	bun.BaseModel `bun:"table:speakers"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Title     string    `bun:"title,nullzero" json:"title,omitempty"`
	Talk      string    `bun:"talk,nullzero" json:"talk,omitempty"`
	Bio       string    `bun:"bio,nullzero" json:"bio,omitempty"`
	Photo     string    `bun:"photo,nullzero" json:"photo,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

type Sponsor struct {
	bun.BaseModel `bun:"table:sponsors"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Logo        string    `bun:"logo,nullzero" json:"logo,omitempty"`
	URL         string    `bun:"url,nullzero" json:"url,omitempty"`
	Tier        string    `bun:"tier,nullzero" json:"tier,omitempty"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

type CommitteeMember struct {
	bun.BaseModel `bun:"table:committee_members"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Title     string    `bun:"title,nullzero" json:"title,omitempty"`
	Bio       string    `bun:"bio,nullzero" json:"bio,omitempty"`
	Photo     string    `bun:"photo,nullzero" json:"photo,omitempty"`
	SortOrder int       `bun:"sort_order,notnull,default:0" json:"order"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// AgendaItem is one row of the program. Day/date/time are free text on
// purpose: the schedule is rendered verbatim, not computed.
type AgendaItem struct {
	bun.BaseModel `bun:"table:agenda_items"`

	ID        string    `bun:"id,pk" json:"id"`
	Day       string    `bun:"day,notnull" json:"day"`
	Date      string    `bun:"date,nullzero" json:"date,omitempty"`
	Time      string    `bun:"time,notnull" json:"time"`
	Type      string    `bun:"type,nullzero" json:"type,omitempty"`
	Title     string    `bun:"title,notnull" json:"title"`
	Room      string    `bun:"room,nullzero" json:"room,omitempty"`
	Speaker   string    `bun:"speaker,nullzero" json:"speaker,omitempty"`
	SortOrder int       `bun:"sort_order,notnull,default:0" json:"order"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}
