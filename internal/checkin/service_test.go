package checkin

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engdahman/conference-app/internal/models"
)

// memStore is an in-memory Store with the same compare-and-set semantics as
// the SQL store: MarkCheckedIn succeeds only while checked_in is still false.
type memStore struct {
	mu        sync.Mutex
	attendees map[string]*models.Attendee
	failAll   bool
}

func newMemStore(attendees ...*models.Attendee) *memStore {
	s := &memStore{attendees: make(map[string]*models.Attendee)}
	for _, a := range attendees {
		s.attendees[a.ID] = a
	}
	return s
}

var errStoreDown = errors.New("connection refused")

func (s *memStore) find(match func(*models.Attendee) bool) (*models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}
	for _, a := range s.attendees {
		if match(a) {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByTicketCodes(_ context.Context, codes []string) (*models.Attendee, error) {
	return s.find(func(a *models.Attendee) bool {
		for _, c := range codes {
			if a.TicketCode == c {
				return true
			}
		}
		return false
	})
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*models.Attendee, error) {
	return s.find(func(a *models.Attendee) bool {
		return strings.EqualFold(a.Email, email)
	})
}

func (s *memStore) FindByPhones(_ context.Context, phones []string) (*models.Attendee, error) {
	return s.find(func(a *models.Attendee) bool {
		for _, p := range phones {
			if a.Phone == p {
				return true
			}
		}
		return false
	})
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.Attendee, error) {
	return s.find(func(a *models.Attendee) bool { return a.ID == id })
}

func (s *memStore) MarkCheckedIn(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return false, errStoreDown
	}
	a, ok := s.attendees[id]
	if !ok || a.CheckedIn {
		return false, nil
	}
	a.CheckedIn = true
	a.CheckinAt = &at
	return true, nil
}

type captureSink struct {
	mu        sync.Mutex
	published []models.Attendee
	emitted   []models.AttendeeCheckedInEvent
}

func (c *captureSink) PublishAttendeeCheckedIn(a models.Attendee) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, a)
	return nil
}

func (c *captureSink) EmitCheckin(evt models.AttendeeCheckedInEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, evt)
}

func testAttendee() *models.Attendee {
	return &models.Attendee{
		ID:         "a1",
		FullName:   "Sara Al-Qahtani",
		Email:      "sara@example.com",
		Phone:      "+966501234567",
		TicketCode: "Y7K2M4A",
	}
}

func TestResolveAndCheckInFirstScanWins(t *testing.T) {
	store := newMemStore(testAttendee())
	sink := &captureSink{}
	svc := NewService(store, DefaultRules(), sink, sink, nil)

	res, err := svc.ResolveAndCheckIn(context.Background(), "TKT-Y7K2M4A")
	require.NoError(t, err)
	assert.False(t, res.Already)
	assert.True(t, res.Attendee.CheckedIn)
	require.NotNil(t, res.Attendee.CheckinAt)

	assert.Len(t, sink.published, 1)
	assert.Len(t, sink.emitted, 1)
	assert.Equal(t, "a1", sink.emitted[0].AttendeeID)
}

func TestResolveAndCheckInIsIdempotent(t *testing.T) {
	store := newMemStore(testAttendee())
	sink := &captureSink{}
	svc := NewService(store, DefaultRules(), sink, sink, nil)

	first, err := svc.ResolveAndCheckIn(context.Background(), "Y7K2M4A")
	require.NoError(t, err)
	require.False(t, first.Already)

	second, err := svc.ResolveAndCheckIn(context.Background(), "code:y7k2m4a")
	require.NoError(t, err)
	assert.True(t, second.Already)
	require.NotNil(t, second.Attendee.CheckinAt)
	// The original timestamp survives the re-scan untouched.
	assert.Equal(t, first.Attendee.CheckinAt.Unix(), second.Attendee.CheckinAt.Unix())

	// Only the winning scan announces.
	assert.Len(t, sink.published, 1)
	assert.Len(t, sink.emitted, 1)
}

func TestResolveAndCheckInConcurrentScansSingleWinner(t *testing.T) {
	store := newMemStore(testAttendee())
	sink := &captureSink{}
	svc := NewService(store, DefaultRules(), sink, sink, nil)

	const scans = 32
	results := make([]*Result, scans)
	errs := make([]error, scans)

	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.ResolveAndCheckIn(context.Background(), "Y7K2M4A")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < scans; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		if !results[i].Already {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Len(t, sink.published, 1)
	assert.Len(t, sink.emitted, 1)
}

func TestResolveAndCheckInByEmailCaseInsensitive(t *testing.T) {
	store := newMemStore(testAttendee())
	svc := NewService(store, DefaultRules(), nil, nil, nil)

	res, err := svc.ResolveAndCheckIn(context.Background(), "SARA@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "a1", res.Attendee.ID)
}

func TestResolveAndCheckInByPhoneVariant(t *testing.T) {
	// Stored as +966..., scanned as the local 05... spelling.
	store := newMemStore(testAttendee())
	svc := NewService(store, DefaultRules(), nil, nil, nil)

	res, err := svc.ResolveAndCheckIn(context.Background(), "0501234567")
	require.NoError(t, err)
	assert.Equal(t, "a1", res.Attendee.ID)
}

func TestResolveAndCheckInMissingInput(t *testing.T) {
	svc := NewService(newMemStore(), DefaultRules(), nil, nil, nil)
	_, err := svc.ResolveAndCheckIn(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestResolveAndCheckInNotFound(t *testing.T) {
	svc := NewService(newMemStore(testAttendee()), DefaultRules(), nil, nil, nil)
	_, err := svc.ResolveAndCheckIn(context.Background(), "ZZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAndCheckInStorageUnavailable(t *testing.T) {
	store := newMemStore(testAttendee())
	store.failAll = true
	svc := NewService(store, DefaultRules(), nil, nil, nil)

	_, err := svc.ResolveAndCheckIn(context.Background(), "Y7K2M4A")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
