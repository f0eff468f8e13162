package agreement

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

// Sweeper recovers sessions stranded in the submitting state. If the process
// dies mid-submission the submit lock expires on its own; the sweeper then
// moves the session back to open with a visible timeout message so the user
// can retry.
type Sweeper struct {
	repo *SessionRepository
	cron *cron.Cron
}

// NewSweeper creates a sweeper over the session repository.
func NewSweeper(repo *SessionRepository) *Sweeper {
	return &Sweeper{repo: repo, cron: cron.New()}
}

// Start schedules the sweep every minute.
func (s *Sweeper) Start() {
	_, err := s.cron.AddFunc("* * * * *", func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		log.Printf("[error] operation=sweeper schedule failed: %v", err)
		return
	}
	log.Println("[info] operation=sweeper started (every minute)")
	s.cron.Start()
}

// Stop halts the schedule.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep runs one pass. Exported so tests can drive it directly.
func (s *Sweeper) Sweep(ctx context.Context) {
	ids, err := s.repo.ListSubmitting(ctx)
	if err != nil {
		log.Printf("[error] operation=sweeper list failed: %v", err)
		return
	}

	for _, id := range ids {
		held, err := s.repo.SubmitLockHeld(ctx, id)
		if err != nil {
			log.Printf("[error] operation=sweeper session=%s lock check failed: %v", id, err)
			continue
		}
		if held {
			// Still within its submission window.
			continue
		}

		sess, err := s.repo.Get(ctx, id)
		if err != nil {
			// Session already settled or expired; just drop the tracking entry.
			_ = s.repo.ReleaseSubmit(ctx, id)
			continue
		}
		if sess.State != domain.SessionSubmitting {
			_ = s.repo.ReleaseSubmit(ctx, id)
			continue
		}

		sess.State = domain.SessionOpen
		sess.LastError = "submission timed out, please try again"
		if err := s.repo.Update(ctx, sess); err != nil {
			log.Printf("[error] operation=sweeper session=%s recover failed: %v", id, err)
			continue
		}
		_ = s.repo.ReleaseSubmit(ctx, id)
		log.Printf("[warn] operation=sweeper session=%s recovered from stale submission", id)
	}
}
