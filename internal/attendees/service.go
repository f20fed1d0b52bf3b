package attendees

import (
	"context"
	"errors"
	"time"

	"github.com/engdahman/conference-app/internal/attendees/db"
	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

var ErrNotFound = errors.New("attendee not found")

// Store is the persistence surface the admin attendee operations need.
type Store interface {
	List(ctx context.Context, q db.ListQuery) ([]models.Attendee, int, error)
	GetByID(ctx context.Context, id string) (*models.Attendee, error)
	Update(ctx context.Context, a *models.Attendee) (bool, error)
	Delete(ctx context.Context, ids []string) (int64, error)
	CountTotal(ctx context.Context) (int, error)
	CountCheckedIn(ctx context.Context) (int, error)
	GroupCount(ctx context.Context, column string) (map[string]int, error)
	ListBirthDates(ctx context.Context) ([]*time.Time, error)
}

// Stats is the dashboard overview payload.
type Stats struct {
	Total        int            `json:"total"`
	CheckedIn    int            `json:"checkedIn"`
	ByGender     map[string]int `json:"byGender"`
	ByEmployment map[string]int `json:"byEmployment"`
	ByAge        map[string]int `json:"byAge"`
}

// Page is one listing page plus the total matching count.
type Page struct {
	Attendees []models.Attendee `json:"attendees"`
	Total     int               `json:"total"`
}

// Service implements the admin-side attendee operations: listing, profile
// edits, bulk deletion and the stats rollup.
type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

func (s *Service) List(ctx context.Context, q db.ListQuery) (*Page, error) {
	attendees, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	return &Page{Attendees: attendees, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Attendee, error) {
	attendee, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attendee == nil {
		return nil, ErrNotFound
	}
	return attendee, nil
}

// Update edits profile fields. Ticket code and check-in state are immutable
// from here.
func (s *Service) Update(ctx context.Context, a *models.Attendee) error {
	found, err := s.store.Update(ctx, a)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *Service) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	return s.store.Delete(ctx, ids)
}

// GetStats assembles the dashboard rollup: head counts, gender and employment
// splits, and age buckets derived from birth dates.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.store.CountTotal(ctx)
	if err != nil {
		return nil, err
	}
	checkedIn, err := s.store.CountCheckedIn(ctx)
	if err != nil {
		return nil, err
	}
	byGender, err := s.store.GroupCount(ctx, "gender")
	if err != nil {
		return nil, err
	}
	byEmployment, err := s.store.GroupCount(ctx, "employment_status")
	if err != nil {
		return nil, err
	}
	birthDates, err := s.store.ListBirthDates(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Total:        total,
		CheckedIn:    checkedIn,
		ByGender:     relabelEmpty(byGender),
		ByEmployment: relabelEmpty(byEmployment),
		ByAge:        ageBuckets(birthDates, time.Now()),
	}, nil
}

// ageBuckets groups ages the way the dashboard charts them. Missing birth
// dates count as unknown rather than being dropped.
func ageBuckets(birthDates []*time.Time, now time.Time) map[string]int {
	buckets := map[string]int{}
	for _, bd := range birthDates {
		buckets[ageBucket(bd, now)]++
	}
	return buckets
}

func ageBucket(birthDate *time.Time, now time.Time) string {
	if birthDate == nil {
		return "unknown"
	}
	age := yearsBetween(*birthDate, now)
	switch {
	case age < 0:
		return "unknown"
	case age <= 18:
		return "18 and under"
	case age <= 24:
		return "19-24"
	case age <= 34:
		return "25-34"
	case age <= 44:
		return "35-44"
	case age <= 54:
		return "45-54"
	default:
		return "55+"
	}
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.YearDay() < from.YearDay() {
		years--
	}
	return years
}

func relabelEmpty(in map[string]int) map[string]int {
	if n, ok := in[""]; ok {
		delete(in, "")
		in["unknown"] += n
	}
	return in
}
