package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

var ErrNotFound = errors.New("content item not found")

// Store is the persistence surface for site content.
type Store interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error

	ListSpeakers(ctx context.Context) ([]models.Speaker, error)
	CreateSpeaker(ctx context.Context, speaker *models.Speaker) error
	UpdateSpeaker(ctx context.Context, speaker *models.Speaker) (bool, error)
	DeleteSpeaker(ctx context.Context, id string) (bool, error)

	ListSponsors(ctx context.Context) ([]models.Sponsor, error)
	CreateSponsor(ctx context.Context, sponsor *models.Sponsor) error
	UpdateSponsor(ctx context.Context, sponsor *models.Sponsor) (bool, error)
	DeleteSponsor(ctx context.Context, id string) (bool, error)

	ListCommittee(ctx context.Context) ([]models.CommitteeMember, error)
	CreateCommitteeMember(ctx context.Context, member *models.CommitteeMember) error
	UpdateCommitteeMember(ctx context.Context, member *models.CommitteeMember) (bool, error)
	DeleteCommitteeMember(ctx context.Context, id string) (bool, error)

	ListAgenda(ctx context.Context) ([]models.AgendaItem, error)
	CreateAgendaItem(ctx context.Context, item *models.AgendaItem) error
	UpdateAgendaItem(ctx context.Context, item *models.AgendaItem) (bool, error)
	DeleteAgendaItem(ctx context.Context, id string) (bool, error)
}

// SettingsCache is the read-through cache in front of GetSettings.
type SettingsCache interface {
	Get(ctx context.Context) (*models.Settings, error)
	Set(ctx context.Context, settings *models.Settings) error
	Invalidate(ctx context.Context) error
}

// Service owns the public site content. The cache is optional; with a nil
// cache every read goes straight to the store.
type Service struct {
	store  Store
	cache  SettingsCache
	logger *logger.Logger
}

func NewService(store Store, cache SettingsCache, log *logger.Logger) *Service {
	return &Service{store: store, cache: cache, logger: log}
}

// GetSettings serves from Redis when possible. Cache failures degrade to a
// database read, never to an error.
func (s *Service) GetSettings(ctx context.Context) (*models.Settings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logWarn(fmt.Sprintf("settings cache read failed: %v", err))
		} else if cached != nil {
			return cached, nil
		}
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, settings); err != nil {
			s.logWarn(fmt.Sprintf("settings cache write failed: %v", err))
		}
	}
	return settings, nil
}

// SaveSettings persists the settings row and refreshes the cache.
func (s *Service) SaveSettings(ctx context.Context, settings *models.Settings) error {
	settings.OrgLogo = normalizeWebPath(settings.OrgLogo)
	settings.EventLogo = normalizeWebPath(settings.EventLogo)
	settings.BannerImage = normalizeWebPath(settings.BannerImage)
	settings.UpdatedAt = time.Now().UTC()

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logWarn(fmt.Sprintf("settings cache invalidation failed: %v", err))
		}
	}
	return nil
}

func (s *Service) ListSpeakers(ctx context.Context) ([]models.Speaker, error) {
	return s.store.ListSpeakers(ctx)
}

func (s *Service) CreateSpeaker(ctx context.Context, speaker *models.Speaker) error {
	speaker.ID = uuid.NewString()
	speaker.Photo = normalizeWebPath(speaker.Photo)
	speaker.CreatedAt = time.Now().UTC()
	return s.store.CreateSpeaker(ctx, speaker)
}

func (s *Service) UpdateSpeaker(ctx context.Context, speaker *models.Speaker) error {
	speaker.Photo = normalizeWebPath(speaker.Photo)
	speaker.UpdatedAt = time.Now().UTC()
	return asNotFound(s.store.UpdateSpeaker(ctx, speaker))
}

func (s *Service) DeleteSpeaker(ctx context.Context, id string) error {
	return asNotFound(s.store.DeleteSpeaker(ctx, id))
}

func (s *Service) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	return s.store.ListSponsors(ctx)
}

func (s *Service) CreateSponsor(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.ID = uuid.NewString()
	sponsor.Logo = normalizeWebPath(sponsor.Logo)
	sponsor.CreatedAt = time.Now().UTC()
	return s.store.CreateSponsor(ctx, sponsor)
}

func (s *Service) UpdateSponsor(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.Logo = normalizeWebPath(sponsor.Logo)
	sponsor.UpdatedAt = time.Now().UTC()
	return asNotFound(s.store.UpdateSponsor(ctx, sponsor))
}

func (s *Service) DeleteSponsor(ctx context.Context, id string) error {
	return asNotFound(s.store.DeleteSponsor(ctx, id))
}

func (s *Service) ListCommittee(ctx context.Context) ([]models.CommitteeMember, error) {
	return s.store.ListCommittee(ctx)
}

func (s *Service) CreateCommitteeMember(ctx context.Context, member *models.CommitteeMember) error {
	member.ID = uuid.NewString()
	member.Photo = normalizeWebPath(member.Photo)
	member.CreatedAt = time.Now().UTC()
	return s.store.CreateCommitteeMember(ctx, member)
}

func (s *Service) UpdateCommitteeMember(ctx context.Context, member *models.CommitteeMember) error {
	member.Photo = normalizeWebPath(member.Photo)
	member.UpdatedAt = time.Now().UTC()
	return asNotFound(s.store.UpdateCommitteeMember(ctx, member))
}

func (s *Service) DeleteCommitteeMember(ctx context.Context, id string) error {
	return asNotFound(s.store.DeleteCommitteeMember(ctx, id))
}

func (s *Service) ListAgenda(ctx context.Context) ([]models.AgendaItem, error) {
	return s.store.ListAgenda(ctx)
}

func (s *Service) CreateAgendaItem(ctx context.Context, item *models.AgendaItem) error {
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()
	return s.store.CreateAgendaItem(ctx, item)
}

func (s *Service) UpdateAgendaItem(ctx context.Context, item *models.AgendaItem) error {
	item.UpdatedAt = time.Now().UTC()
	return asNotFound(s.store.UpdateAgendaItem(ctx, item))
}

func (s *Service) DeleteAgendaItem(ctx context.Context, id string) error {
	return asNotFound(s.store.DeleteAgendaItem(ctx, id))
}

func (s *Service) logWarn(message string) {
	if s.logger != nil {
		s.logger.Warn("CONTENT", message)
	}
}

// normalizeWebPath makes stored image references servable: uploaded files get
// a leading slash, absolute URLs and inline data URLs pass through.
func normalizeWebPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

func asNotFound(found bool, err error) error {
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
