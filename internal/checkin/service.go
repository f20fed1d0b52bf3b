package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

// Sentinel errors the HTTP layer maps onto wire error codes. Storage failures
// wrap ErrStorageUnavailable so callers can errors.Is them.
var (
	ErrMissingInput       = errors.New("missing input")
	ErrInvalidInput       = errors.New("input unusable after normalization")
	ErrNotFound           = errors.New("no matching attendee")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store is the persistence surface the resolver needs. Lookups return
// (nil, nil) when nothing matches; an error always means the store itself
// failed. MarkCheckedIn must be a conditional write keyed on the attendee id
// AND the not-checked-in state, reporting whether this call won the flip.
type Store interface {
	FindByTicketCodes(ctx context.Context, codes []string) (*models.Attendee, error)
	FindByEmail(ctx context.Context, email string) (*models.Attendee, error)
	FindByPhones(ctx context.Context, phones []string) (*models.Attendee, error)
	GetByID(ctx context.Context, id string) (*models.Attendee, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time) (bool, error)
}

// Publisher emits the checked-in domain event to the broker.
type Publisher interface {
	PublishAttendeeCheckedIn(a models.Attendee) error
}

// Emitter pushes the event to connected dashboard SSE streams.
type Emitter interface {
	EmitCheckin(evt models.AttendeeCheckedInEvent)
}

// Result is the outcome of a successful resolution. Already reports that the
// attendee was checked in before this call; Attendee is the current record
// either way.
type Result struct {
	Already  bool
	Attendee models.Attendee
}

// Service resolves raw scanner/keyboard input to an attendee and performs the
// idempotent check-in transition. Publisher and Emitter are optional; both are
// invoked only by the call that actually flips the state.
type Service struct {
	store     Store
	rules     Rules
	publisher Publisher
	emitter   Emitter
	logger    *logger.Logger
}

func NewService(store Store, rules Rules, publisher Publisher, emitter Emitter, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		rules:     rules,
		publisher: publisher,
		emitter:   emitter,
		logger:    log,
	}
}

// ResolveAndCheckIn normalizes raw input, finds the attendee it identifies and
// marks them checked in. Calling it again for the same attendee is a no-op
// that reports Already=true; concurrent calls for the same attendee produce
// exactly one Already=false winner.
func (s *Service) ResolveAndCheckIn(ctx context.Context, raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingInput
	}

	ident := Normalize(raw, s.rules)
	if len(ident.Candidates) == 0 {
		return nil, ErrInvalidInput
	}

	attendee, err := s.lookup(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if attendee == nil {
		return nil, ErrNotFound
	}

	if attendee.CheckedIn {
		return &Result{Already: true, Attendee: *attendee}, nil
	}

	now := time.Now().UTC()
	won, err := s.store.MarkCheckedIn(ctx, attendee.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if !won {
		// Lost the race: someone else flipped the state between our read and
		// write. Report their timestamp, never a fabricated one.
		fresh, err := s.store.GetByID(ctx, attendee.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if fresh == nil {
			return nil, ErrNotFound
		}
		return &Result{Already: true, Attendee: *fresh}, nil
	}

	attendee.CheckedIn = true
	attendee.CheckinAt = &now
	attendee.UpdatedAt = now
	s.announce(*attendee)

	return &Result{Already: false, Attendee: *attendee}, nil
}

func (s *Service) lookup(ctx context.Context, ident Identifier) (*models.Attendee, error) {
	switch ident.Kind {
	case KindEmail:
		return s.store.FindByEmail(ctx, ident.Candidates[0])
	case KindPhone:
		return s.store.FindByPhones(ctx, ident.Candidates)
	default:
		return s.store.FindByTicketCodes(ctx, ident.Candidates)
	}
}

// announce fans the checked-in event out to Kafka and SSE. Failures are
// logged, not returned: the attendee is already checked in and the handler
// must report that regardless of what the broker does.
func (s *Service) announce(a models.Attendee) {
	if s.publisher != nil {
		if err := s.publisher.PublishAttendeeCheckedIn(a); err != nil && s.logger != nil {
			s.logger.Error("CHECKIN", fmt.Sprintf("publish checked-in event for %s failed: %v", a.ID, err))
		}
	}
	if s.emitter != nil {
		s.emitter.EmitCheckin(models.NewAttendeeCheckedInEvent(a))
	}
}
