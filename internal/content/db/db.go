package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/engdahman/conference-app/internal/models"
)

// Store persists the public site content: settings, speakers, sponsors,
// committee and agenda.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// settingsRowID pins the single settings row. Saves upsert this id.
const settingsRowID = 1

// GetSettings returns the site settings, or a zero-valued row when none has
// been saved yet.
func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings := new(models.Settings)
	err := s.db.NewSelect().
		Model(settings).
		Where("id = ?", settingsRowID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Settings{ID: settingsRowID}, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings upserts the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings *models.Settings) error {
	settings.ID = settingsRowID
	_, err := s.db.NewInsert().
		Model(settings).
		On("CONFLICT (id) DO UPDATE").
		Exec(ctx)
	return err
}

func (s *Store) ListSpeakers(ctx context.Context) ([]models.Speaker, error) {
	var speakers []models.Speaker
	err := s.db.NewSelect().
		Model(&speakers).
		Order("created_at DESC").
		Scan(ctx)
	return speakers, err
}

func (s *Store) CreateSpeaker(ctx context.Context, speaker *models.Speaker) error {
	_, err := s.db.NewInsert().Model(speaker).Exec(ctx)
	return err
}

func (s *Store) UpdateSpeaker(ctx context.Context, speaker *models.Speaker) (bool, error) {
	res, err := s.db.NewUpdate().
		Model(speaker).
		WherePK().
		OmitZero().
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) DeleteSpeaker(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*models.Speaker)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	err := s.db.NewSelect().
		Model(&sponsors).
		Order("tier ASC").
		Order("name ASC").
		Scan(ctx)
	return sponsors, err
}

func (s *Store) CreateSponsor(ctx context.Context, sponsor *models.Sponsor) error {
	_, err := s.db.NewInsert().Model(sponsor).Exec(ctx)
	return err
}

func (s *Store) UpdateSponsor(ctx context.Context, sponsor *models.Sponsor) (bool, error) {
	res, err := s.db.NewUpdate().
		Model(sponsor).
		WherePK().
		OmitZero().
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) DeleteSponsor(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*models.Sponsor)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) ListCommittee(ctx context.Context) ([]models.CommitteeMember, error) {
	var members []models.CommitteeMember
	err := s.db.NewSelect().
		Model(&members).
		Order("sort_order ASC").
		Order("created_at ASC").
		Scan(ctx)
	return members, err
}

func (s *Store) CreateCommitteeMember(ctx context.Context, member *models.CommitteeMember) error {
	_, err := s.db.NewInsert().Model(member).Exec(ctx)
	return err
}

func (s *Store) UpdateCommitteeMember(ctx context.Context, member *models.CommitteeMember) (bool, error) {
	res, err := s.db.NewUpdate().
		Model(member).
		WherePK().
		OmitZero().
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) DeleteCommitteeMember(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*models.CommitteeMember)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) ListAgenda(ctx context.Context) ([]models.AgendaItem, error) {
	var items []models.AgendaItem
	err := s.db.NewSelect().
		Model(&items).
		Order("day ASC").
		Order("sort_order ASC").
		Order("created_at ASC").
		Scan(ctx)
	return items, err
}

func (s *Store) CreateAgendaItem(ctx context.Context, item *models.AgendaItem) error {
	_, err := s.db.NewInsert().Model(item).Exec(ctx)
	return err
}

func (s *Store) UpdateAgendaItem(ctx context.Context, item *models.AgendaItem) (bool, error) {
	res, err := s.db.NewUpdate().
		Model(item).
		WherePK().
		OmitZero().
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) DeleteAgendaItem(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*models.AgendaItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err)
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
