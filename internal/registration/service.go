package registration

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
	"github.com/engdahman/conference-app/internal/registration/qr"
)

var (
	ErrValidation         = errors.New("invalid registration input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the persistence surface registration needs.
type Store interface {
	Insert(ctx context.Context, a *models.Attendee) error
	EmailExists(ctx context.Context, email string) (bool, error)
	TicketCodeExists(ctx context.Context, code string) (bool, error)
}

// Mailer delivers the ticket email. Implementations must treat delivery as
// best-effort; registration never fails because SMTP is down.
type Mailer interface {
	SendTicket(a models.Attendee, qrDataURL string) error
}

// Publisher emits the registered domain event to the broker.
type Publisher interface {
	PublishAttendeeRegistered(a models.Attendee) error
}

// Input is the self-registration form payload.
type Input struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Gender           string `json:"gender"`
	EmploymentStatus string `json:"employmentStatus"`
	JobTitle         string `json:"jobTitle"`
	Employer         string `json:"employer"`
	Sector           string `json:"sector"`
	BirthDate        string `json:"birthDate"`
	GradYear         string `json:"gradYear"`
}

// Service handles attendee self-registration: validation, ticket code
// assignment, persistence, QR rendering, confirmation email and the
// registered event.
type Service struct {
	store     Store
	mailer    Mailer
	publisher Publisher
	logger    *logger.Logger
}

func NewService(store Store, mailer Mailer, publisher Publisher, log *logger.Logger) *Service {
	return &Service{store: store, mailer: mailer, publisher: publisher, logger: log}
}

// Register creates the attendee and returns it with the badge QR data URL.
// Email delivery and event publishing are best-effort: their failures are
// logged but never surface to the registrant.
func (s *Service) Register(ctx context.Context, in Input) (*models.Attendee, string, error) {
	attendee, err := s.buildAttendee(in)
	if err != nil {
		return nil, "", err
	}

	exists, err := s.store.EmailExists(ctx, attendee.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if exists {
		return nil, "", ErrDuplicateEmail
	}

	attendee.TicketCode, err = s.freshTicketCode(ctx)
	if err != nil {
		return nil, "", err
	}

	if err := s.store.Insert(ctx, attendee); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	qrDataURL, err := qr.GenerateDataURL(attendee.TicketCode)
	if err != nil {
		// The registration stands; the confirmation page can still show the
		// ticket code itself.
		s.logError("REGISTER", fmt.Sprintf("qr render failed for %s: %v", attendee.ID, err))
		qrDataURL = ""
	}

	if s.mailer != nil {
		if err := s.mailer.SendTicket(*attendee, qrDataURL); err != nil {
			s.logError("MAIL", fmt.Sprintf("ticket email to %s failed: %v", attendee.Email, err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishAttendeeRegistered(*attendee); err != nil {
			s.logError("REGISTER", fmt.Sprintf("publish registered event for %s failed: %v", attendee.ID, err))
		}
	}

	return attendee, qrDataURL, nil
}

func (s *Service) buildAttendee(in Input) (*models.Attendee, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)

	if fullName == "" {
		return nil, fmt.Errorf("%w: fullName is required", ErrValidation)
	}
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrValidation)
	}

	now := time.Now().UTC()
	attendee := &models.Attendee{
		ID:               uuid.NewString(),
		FullName:         fullName,
		Email:            email,
		Phone:            phone,
		Gender:           strings.TrimSpace(in.Gender),
		EmploymentStatus: strings.TrimSpace(in.EmploymentStatus),
		JobTitle:         strings.TrimSpace(in.JobTitle),
		Employer:         strings.TrimSpace(in.Employer),
		Sector:           strings.TrimSpace(in.Sector),
		GradYear:         strings.TrimSpace(in.GradYear),
		RegisteredAt:     now,
		CreatedAt:        now,
	}

	if bd := strings.TrimSpace(in.BirthDate); bd != "" {
		parsed, err := time.Parse("2006-01-02", bd)
		if err != nil {
			return nil, fmt.Errorf("%w: birthDate must be YYYY-MM-DD", ErrValidation)
		}
		attendee.BirthDate = &parsed
	}

	return attendee, nil
}

// freshTicketCode draws codes until one is unused. The unique constraint on
// ticket_code remains the final arbiter; this just keeps conflicts rare.
func (s *Service) freshTicketCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := NewTicketCode()
		if err != nil {
			return "", err
		}
		taken, err := s.store.TicketCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique ticket code", ErrStorageUnavailable)
}

func (s *Service) logError(category, message string) {
	if s.logger != nil {
		s.logger.Error(category, message)
	}
}
