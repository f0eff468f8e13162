package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable means the mandatory faculty fetch failed and no
	// catalog could be built at all. Optional per-faculty and marketplace
	// fetch failures only degrade the catalog and are never surfaced this way.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	ErrProjectNotFound = errors.New("project not found")

	ErrSessionNotFound = errors.New("agreement session not found")
	ErrSessionExists   = errors.New("an agreement session is already open for this project")
	ErrSubmitInFlight  = errors.New("a submission is already in flight for this session")

	ErrNotPDF           = errors.New("only PDF agreement documents are accepted")
	ErrDocumentTooLarge = errors.New("agreement document exceeds the size limit")
	ErrDocumentRequired = errors.New("a signed agreement document must be uploaded first")
	ErrPriceRequired    = errors.New("a purchase price is required")
	ErrPriceNotAllowed  = errors.New("price is not applicable to sponsorships")
)

// SubmissionError carries the upstream rejection of a final submission.
// Message is taken from the upstream response body when one is present so the
// user sees the backend's own reason; otherwise a generic fallback.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("submission rejected with status %d", e.StatusCode)
}
