package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/engdahman/conference-app/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and
	// serializes writes the way the production pool's row lock would.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	_, err = bunDB.NewCreateTable().
		Model((*models.Attendee)(nil)).
		IfNotExists().
		Exec(context.Background())
	require.NoError(t, err)

	return NewStore(bunDB)
}

func insertAttendee(t *testing.T, s *Store, a *models.Attendee) {
	t.Helper()
	if a.RegisteredAt.IsZero() {
		a.RegisteredAt = time.Now().UTC()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().Model(a).Exec(context.Background())
	require.NoError(t, err)
}

func TestFindByTicketCodes(t *testing.T) {
	store := setupTestStore(t)
	insertAttendee(t, store, &models.Attendee{
		ID: "a1", FullName: "Omar", Email: "omar@example.com",
		Phone: "+966501111111", TicketCode: "Y7K2M4A",
	})

	found, err := store.FindByTicketCodes(context.Background(), []string{"NOPE", "Y7K2M4A"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a1", found.ID)

	missing, err := store.FindByTicketCodes(context.Background(), []string{"ZZZZZZZ"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	none, err := store.FindByTicketCodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindByEmailIgnoresCase(t *testing.T) {
	store := setupTestStore(t)
	insertAttendee(t, store, &models.Attendee{
		ID: "a1", FullName: "Omar", Email: "Omar@Example.com",
		Phone: "+966501111111", TicketCode: "Y7K2M4A",
	})

	found, err := store.FindByEmail(context.Background(), "omar@example.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a1", found.ID)
}

func TestFindByPhones(t *testing.T) {
	store := setupTestStore(t)
	insertAttendee(t, store, &models.Attendee{
		ID: "a1", FullName: "Omar", Email: "omar@example.com",
		Phone: "0501111111", TicketCode: "Y7K2M4A",
	})

	found, err := store.FindByPhones(context.Background(), []string{"+966501111111", "0501111111"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a1", found.ID)
}

func TestMarkCheckedInIsConditional(t *testing.T) {
	store := setupTestStore(t)
	insertAttendee(t, store, &models.Attendee{
		ID: "a1", FullName: "Omar", Email: "omar@example.com",
		Phone: "+966501111111", TicketCode: "Y7K2M4A",
	})

	at := time.Now().UTC()
	won, err := store.MarkCheckedIn(context.Background(), "a1", at)
	require.NoError(t, err)
	assert.True(t, won)

	// Second attempt matches zero rows: the state guard fails.
	won, err = store.MarkCheckedIn(context.Background(), "a1", at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, won)

	fresh, err := store.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.True(t, fresh.CheckedIn)
	require.NotNil(t, fresh.CheckinAt)
	assert.Equal(t, at.Unix(), fresh.CheckinAt.Unix())
}

func TestMarkCheckedInUnknownID(t *testing.T) {
	store := setupTestStore(t)
	won, err := store.MarkCheckedIn(context.Background(), "ghost", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMarkCheckedInConcurrentSingleWinner(t *testing.T) {
	store := setupTestStore(t)
	insertAttendee(t, store, &models.Attendee{
		ID: "a1", FullName: "Omar", Email: "omar@example.com",
		Phone: "+966501111111", TicketCode: "Y7K2M4A",
	})

	const attempts = 16
	wins := make([]bool, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i], errs[i] = store.MarkCheckedIn(context.Background(), "a1", time.Now().UTC())
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if wins[i] {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}
