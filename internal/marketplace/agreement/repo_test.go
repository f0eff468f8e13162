package agreement

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

func newTestRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionRepository(client, 10*time.Minute), mr
}

func testSession(id string) *domain.AgreementSession {
	return &domain.AgreementSession{
		ID:          id,
		SubmitterID: "expert-9",
		Track:       domain.TrackBuy,
		Project:     domain.ProjectRecord{ID: "P1", Title: "Smart Campus"},
		State:       domain.SessionOpen,
		CreatedAt:   time.Now(),
	}
}

func TestSessionRepository_CreateGetDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	s := testSession("s1")
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "expert-9", got.SubmitterID)
	assert.Equal(t, "Smart Campus", got.Project.Title)

	require.NoError(t, repo.Delete(ctx, s))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_OneOpenSessionPerSelection(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSession("s1")))

	dup := testSession("s2")
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrSessionExists)

	// Different project is a different slot.
	other := testSession("s3")
	other.Project.ID = "P2"
	assert.NoError(t, repo.Create(ctx, other))
}

func TestSessionRepository_SessionsExpire(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSession("s1")))

	mr.FastForward(11 * time.Minute)

	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_SubmitLock(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AcquireSubmit(ctx, "s1", time.Minute))
	assert.ErrorIs(t, repo.AcquireSubmit(ctx, "s1", time.Minute), domain.ErrSubmitInFlight)

	held, err := repo.SubmitLockHeld(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, held)

	// The lock expires on its own; the tracking entry stays for the sweeper.
	mr.FastForward(2 * time.Minute)
	held, err = repo.SubmitLockHeld(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, held)

	ids, err := repo.ListSubmitting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, repo.ReleaseSubmit(ctx, "s1"))
	ids, err = repo.ListSubmitting(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
