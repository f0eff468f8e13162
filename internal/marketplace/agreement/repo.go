package agreement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

const (
	sessionKeyPrefix  = "mkt:agreement:session:"  // session data: mkt:agreement:session:{id}
	ownerKeyPrefix    = "mkt:agreement:owner:"    // open-session index: mkt:agreement:owner:{submitter}:{project}:{track} -> id
	inflightKeyPrefix = "mkt:agreement:inflight:" // submit lock: mkt:agreement:inflight:{id}
	submittingSetKey  = "mkt:agreement:submitting"
)

// SessionRepository keeps agreement sessions in Redis. Sessions are ephemeral
// by contract: a TTL bounds abandoned dialogs and explicit deletion handles
// submit/cancel.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a repository with the given session TTL.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRepository{client: client, ttl: ttl}
}

// Create stores a new session. At most one open session may exist per
// (submitter, project, track); a second create returns ErrSessionExists.
func (r *SessionRepository) Create(ctx context.Context, s *domain.AgreementSession) error {
	ok, err := r.client.SetNX(ctx, r.ownerKey(s), s.ID, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("reserve session slot: %w", err)
	}
	if !ok {
		return domain.ErrSessionExists
	}
	return r.save(ctx, s)
}

// Get retrieves a session by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.AgreementSession, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s domain.AgreementSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Update rewrites a session, refreshing its TTL.
func (r *SessionRepository) Update(ctx context.Context, s *domain.AgreementSession) error {
	return r.save(ctx, s)
}

// Delete removes a session and its open-session reservation.
func (r *SessionRepository) Delete(ctx context.Context, s *domain.AgreementSession) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, sessionKeyPrefix+s.ID)
	pipe.Del(ctx, r.ownerKey(s))
	pipe.Del(ctx, inflightKeyPrefix+s.ID)
	pipe.SRem(ctx, submittingSetKey, s.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// AcquireSubmit takes the submit lock for a session. Exactly one submission
// may be in flight at a time; a concurrent acquire gets ErrSubmitInFlight.
// The lock expires on its own so a crashed submission cannot wedge the
// session forever.
func (r *SessionRepository) AcquireSubmit(ctx context.Context, id string, timeout time.Duration) error {
	ok, err := r.client.SetNX(ctx, inflightKeyPrefix+id, "1", timeout).Result()
	if err != nil {
		return fmt.Errorf("acquire submit lock: %w", err)
	}
	if !ok {
		return domain.ErrSubmitInFlight
	}
	if err := r.client.SAdd(ctx, submittingSetKey, id).Err(); err != nil {
		return fmt.Errorf("track submitting session: %w", err)
	}
	return nil
}

// ReleaseSubmit drops the submit lock after the submission settled.
func (r *SessionRepository) ReleaseSubmit(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, inflightKeyPrefix+id)
	pipe.SRem(ctx, submittingSetKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("release submit lock: %w", err)
	}
	return nil
}

// ListSubmitting returns ids of sessions that entered the submitting state
// and have not settled yet. Used by the sweeper.
func (r *SessionRepository) ListSubmitting(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, submittingSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list submitting sessions: %w", err)
	}
	return ids, nil
}

// SubmitLockHeld reports whether the submit lock for a session still exists.
func (r *SessionRepository) SubmitLockHeld(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, inflightKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("check submit lock: %w", err)
	}
	return n > 0, nil
}

func (r *SessionRepository) save(ctx context.Context, s *domain.AgreementSession) error {
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ownerKey(s *domain.AgreementSession) string {
	return fmt.Sprintf("%s%s:%s:%s", ownerKeyPrefix, s.SubmitterID, s.Project.ID, s.Track)
}
