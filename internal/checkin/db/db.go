package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/engdahman/conference-app/internal/models"
)

// Store is the attendee lookup/check-in persistence layer backing the
// check-in service.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// FindByTicketCodes returns the first attendee whose ticket_code matches any
// candidate, or (nil, nil) when none does. Candidates are ordered most-likely
// first, but the match itself is set-based.
func (s *Store) FindByTicketCodes(ctx context.Context, codes []string) (*models.Attendee, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	attendee := new(models.Attendee)
	err := s.db.NewSelect().
		Model(attendee).
		Where("ticket_code IN (?)", bun.In(codes)).
		Limit(1).
		Scan(ctx)
	return noRowsToNil(attendee, err)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.Attendee, error) {
	attendee := new(models.Attendee)
	err := s.db.NewSelect().
		Model(attendee).
		Where("lower(email) = lower(?)", email).
		Limit(1).
		Scan(ctx)
	return noRowsToNil(attendee, err)
}

func (s *Store) FindByPhones(ctx context.Context, phones []string) (*models.Attendee, error) {
	if len(phones) == 0 {
		return nil, nil
	}
	attendee := new(models.Attendee)
	err := s.db.NewSelect().
		Model(attendee).
		Where("phone IN (?)", bun.In(phones)).
		Limit(1).
		Scan(ctx)
	return noRowsToNil(attendee, err)
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Attendee, error) {
	attendee := new(models.Attendee)
	err := s.db.NewSelect().
		Model(attendee).
		Where("id = ?", id).
		Scan(ctx)
	return noRowsToNil(attendee, err)
}

// MarkCheckedIn flips checked_in with a single conditional UPDATE keyed on
// both the id and the not-checked-in state. Exactly one concurrent caller
// observes rows=1; everyone else gets (false, nil) and must re-read.
func (s *Store) MarkCheckedIn(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("checked_in = ?", true).
		Set("checkin_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("checked_in = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func noRowsToNil(a *models.Attendee, err error) (*models.Attendee, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
