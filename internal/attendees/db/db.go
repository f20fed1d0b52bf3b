package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/engdahman/conference-app/internal/models"
)

// Store is the attendee admin/registration persistence layer.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// ListQuery narrows the admin attendee listing.
type ListQuery struct {
	Search    string
	CheckedIn *bool
	Limit     int
	Offset    int
}

func (s *Store) Insert(ctx context.Context, a *models.Attendee) error {
	_, err := s.db.NewInsert().Model(a).Exec(ctx)
	return err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.db.NewSelect().
		Model((*models.Attendee)(nil)).
		Where("lower(email) = lower(?)", email).
		Exists(ctx)
}

func (s *Store) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	return s.db.NewSelect().
		Model((*models.Attendee)(nil)).
		Where("ticket_code = ?", code).
		Exists(ctx)
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Attendee, error) {
	attendee := new(models.Attendee)
	err := s.db.NewSelect().Model(attendee).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return attendee, nil
}

// List returns a page of attendees plus the total matching count.
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.Attendee, int, error) {
	var attendees []models.Attendee
	query := s.db.NewSelect().Model(&attendees)

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("full_name LIKE ?", pattern).
				WhereOr("email LIKE ?", pattern).
				WhereOr("phone LIKE ?", pattern).
				WhereOr("ticket_code LIKE ?", pattern)
		})
	}
	if q.CheckedIn != nil {
		query = query.Where("checked_in = ?", *q.CheckedIn)
	}

	query = query.Order("registered_at DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit).Offset(q.Offset)
	}
	total, err := query.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return attendees, total, nil
}

// Update writes the non-zero fields of a; check-in state is deliberately not
// touchable here, that belongs to the check-in service.
func (s *Store) Update(ctx context.Context, a *models.Attendee) (bool, error) {
	a.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().
		Model(a).
		WherePK().
		OmitZero().
		ExcludeColumn("checked_in", "checkin_at", "ticket_code", "registered_at", "created_at").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Delete removes the given attendees and reports how many rows went away.
func (s *Store) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.NewDelete().
		Model((*models.Attendee)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountTotal(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*models.Attendee)(nil)).Count(ctx)
}

func (s *Store) CountCheckedIn(ctx context.Context) (int, error) {
	return s.db.NewSelect().
		Model((*models.Attendee)(nil)).
		Where("checked_in = ?", true).
		Count(ctx)
}

// GroupCount tallies attendees per distinct value of column. Empty values
// come back under the empty-string key.
func (s *Store) GroupCount(ctx context.Context, column string) (map[string]int, error) {
	var rows []struct {
		Value string `bun:"value"`
		N     int    `bun:"n"`
	}
	err := s.db.NewSelect().
		Model((*models.Attendee)(nil)).
		ColumnExpr("coalesce(?, '') AS value", bun.Ident(column)).
		ColumnExpr("count(*) AS n").
		GroupExpr("coalesce(?, '')", bun.Ident(column)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Value] = row.N
	}
	return out, nil
}

// ListBirthDates returns every attendee's birth date (nil where unset) for
// the age-bucket statistics.
func (s *Store) ListBirthDates(ctx context.Context) ([]*time.Time, error) {
	var rows []struct {
		BirthDate *time.Time `bun:"birth_date"`
	}
	err := s.db.NewSelect().
		Model((*models.Attendee)(nil)).
		Column("birth_date").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make([]*time.Time, len(rows))
	for i, row := range rows {
		out[i] = row.BirthDate
	}
	return out, nil
}
