package agreement

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

// Submitter is the slice of the platform backend the workflow submits
// through. Satisfied by catalog.Client.
type Submitter interface {
	RequestFYP(ctx context.Context, token, fypID, expertID string) error
	CreateCheckoutSession(ctx context.Context, token, fypID, expertID string, price int, agreementBase64 string) (string, error)
	SponsorFYP(ctx context.Context, token, fypID, expertID, agreementBase64 string) error
}

// Workflow drives the per-selection agreement state machine:
// open -> submitting -> (gone on success | back to open with the error kept).
type Workflow struct {
	repo          *SessionRepository
	upstream      Submitter
	submitTimeout time.Duration
	now           func() time.Time
}

// NewWorkflow creates the workflow service. submitTimeout bounds how long a
// single submission may stay in flight before the sweeper recovers it.
func NewWorkflow(repo *SessionRepository, upstream Submitter, submitTimeout time.Duration) *Workflow {
	if submitTimeout == 0 {
		submitTimeout = 2 * time.Minute
	}
	return &Workflow{
		repo:          repo,
		upstream:      upstream,
		submitTimeout: submitTimeout,
		now:           time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// Open starts a session for one selected project and track, rendering the
// agreement text the user must acknowledge. At most one open session per
// (submitter, project, track).
func (w *Workflow) Open(ctx context.Context, submitterID string, rec domain.ProjectRecord, track string) (*domain.AgreementSession, error) {
	text, err := RenderAgreement(track, rec, submitterID, w.now())
	if err != nil {
		return nil, err
	}

	s := &domain.AgreementSession{
		ID:            uuid.New().String(),
		SubmitterID:   submitterID,
		Track:         track,
		Project:       rec,
		AgreementText: text,
		State:         domain.SessionOpen,
		CreatedAt:     w.now(),
	}
	if err := w.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a session, scoped to its owner.
func (w *Workflow) Get(ctx context.Context, submitterID, sessionID string) (*domain.AgreementSession, error) {
	s, err := w.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.SubmitterID != submitterID {
		// A foreign session is indistinguishable from a missing one.
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// AttachDocument validates and stores the counter-signed agreement on the
// session. A non-PDF is rejected and the session stays open, unchanged.
// Re-attaching replaces the previous document.
func (w *Workflow) AttachDocument(ctx context.Context, submitterID, sessionID, filename, contentType string, data []byte) (*domain.AgreementSession, error) {
	s, err := w.Get(ctx, submitterID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.State != domain.SessionOpen {
		return nil, domain.ErrSubmitInFlight
	}
	if err := ValidatePDF(filename, contentType, data); err != nil {
		return nil, err
	}

	s.DocumentName = filename
	s.DocumentBase64 = base64.StdEncoding.EncodeToString(data)
	s.LastError = ""
	if err := w.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Submit confirms the agreement and sends the track-specific request
// upstream. On failure the session returns to open with the upstream message
// recorded, keeping the uploaded document so the user can retry without
// re-uploading. There is no automatic retry.
func (w *Workflow) Submit(ctx context.Context, token, submitterID, sessionID string, price int) (*domain.SubmitResult, error) {
	s, err := w.Get(ctx, submitterID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := w.validateSubmit(s, price); err != nil {
		return nil, err
	}

	if err := w.repo.AcquireSubmit(ctx, s.ID, w.submitTimeout); err != nil {
		return nil, err
	}

	s.State = domain.SessionSubmitting
	s.Price = price
	s.LastError = ""
	if err := w.repo.Update(ctx, s); err != nil {
		_ = w.repo.ReleaseSubmit(ctx, s.ID)
		return nil, err
	}

	result, submitErr := w.send(ctx, token, s, price)
	if submitErr != nil {
		log.Printf("[warn] operation=agreement_submit session=%s track=%s failed: %v", s.ID, s.Track, submitErr)
		s.State = domain.SessionOpen
		s.LastError = submitErr.Error()
		if err := w.repo.Update(ctx, s); err != nil {
			log.Printf("[error] operation=agreement_submit session=%s reopen failed: %v", s.ID, err)
		}
		_ = w.repo.ReleaseSubmit(ctx, s.ID)
		return nil, submitErr
	}

	if err := w.repo.Delete(ctx, s); err != nil {
		// The request went through; a lingering session is only cosmetic and
		// the TTL will collect it.
		log.Printf("[warn] operation=agreement_submit session=%s cleanup failed: %v", s.ID, err)
	}
	return result, nil
}

// Cancel destroys a session without submitting.
func (w *Workflow) Cancel(ctx context.Context, submitterID, sessionID string) error {
	s, err := w.Get(ctx, submitterID, sessionID)
	if err != nil {
		return err
	}
	if s.State != domain.SessionOpen {
		return domain.ErrSubmitInFlight
	}
	return w.repo.Delete(ctx, s)
}

// validateSubmit enforces the per-track preconditions before any state moves.
func (w *Workflow) validateSubmit(s *domain.AgreementSession, price int) error {
	switch s.Track {
	case domain.TrackSponsor:
		if price > 0 {
			return domain.ErrPriceNotAllowed
		}
		if !s.HasDocument() {
			return domain.ErrDocumentRequired
		}
	default: // buy
		if price > 0 && !s.HasDocument() {
			return domain.ErrDocumentRequired
		}
		if price <= 0 && s.HasDocument() {
			return domain.ErrPriceRequired
		}
	}
	return nil
}

func (w *Workflow) send(ctx context.Context, token string, s *domain.AgreementSession, price int) (*domain.SubmitResult, error) {
	if s.Track == domain.TrackSponsor {
		if err := w.upstream.SponsorFYP(ctx, token, s.Project.ID, s.SubmitterID, s.DocumentBase64); err != nil {
			return nil, err
		}
		return &domain.SubmitResult{Status: "sponsored"}, nil
	}

	// Buy: with a negotiated price this goes through the hosted checkout;
	// without one it is the plain "request this FYP" flow.
	if price > 0 {
		checkoutURL, err := w.upstream.CreateCheckoutSession(ctx, token, s.Project.ID, s.SubmitterID, price, s.DocumentBase64)
		if err != nil {
			return nil, err
		}
		return &domain.SubmitResult{Status: "checkout", CheckoutURL: checkoutURL}, nil
	}

	if err := w.upstream.RequestFYP(ctx, token, s.Project.ID, s.SubmitterID); err != nil {
		return nil, err
	}
	return &domain.SubmitResult{Status: "requested"}, nil
}

// IsValidationError reports whether err is one of the submit preconditions
// the caller should surface as a 4xx rather than an upstream failure.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrDocumentRequired) ||
		errors.Is(err, domain.ErrPriceRequired) ||
		errors.Is(err, domain.ErrPriceNotAllowed)
}
