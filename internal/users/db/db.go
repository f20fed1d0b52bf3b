package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/engdahman/conference-app/internal/models"
)

// Store persists dashboard accounts.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.NewSelect().
		Model(&users).
		Order("created_at ASC").
		Scan(ctx)
	return users, err
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().
		Model(user).
		Where("lower(username) = lower(?)", username).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.NewInsert().Model(user).Exec(ctx)
	return err
}

// UpdatePassword replaces a user's password hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) UpdateRole(ctx context.Context, id, role string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("role = ?", role).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err)
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err)
}

// CountAdmins guards against deleting or demoting the last admin.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	return s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("role = ?", models.RoleAdmin).
		Count(ctx)
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
