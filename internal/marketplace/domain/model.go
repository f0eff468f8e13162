package domain

import "time"

// Faculty is the filter dimension for the marketplace and the provenance
// source for project records that arrive without identity fields.
type Faculty struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Department     string `json:"department"`
	UniversityName string `json:"universityName"`
}

// FullName returns the display name used when denormalizing onto projects.
func (f Faculty) FullName() string {
	if f.FirstName == "" {
		return f.LastName
	}
	if f.LastName == "" {
		return f.FirstName
	}
	return f.FirstName + " " + f.LastName
}

// ProjectRecord is a final-year project as seen by the marketplace, after
// merging the per-faculty lists with the marketplace-specific collections.
// Category and ImageURL are assigned locally and never sent upstream.
type ProjectRecord struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	FacultyID        string   `json:"facultyId"`
	FacultyName      string   `json:"facultyName"`
	UniversityName   string   `json:"universityName"`
	Department       string   `json:"department"`
	Technology       string   `json:"technology"`
	Members          int      `json:"members"`
	YearOfCompletion int      `json:"yearOfCompletion"` // 0 means not set
	Batch            int      `json:"batch,omitempty"`
	Status           string   `json:"status"`
	Category         string   `json:"category"`
	ImageURL         string   `json:"imageUrl"`
	StudentNames     []string `json:"studentNames,omitempty"`
}

// StatusApproved is the lifecycle marker the track splitter keys on.
// Any other status (or none) is treated as not yet approved.
const StatusApproved = "Approved"

// Marketplace tracks.
const (
	TrackBuy     = "buy"
	TrackSponsor = "sponsor"
)

// ValidTrack reports whether t is one of the two marketplace tracks.
func ValidTrack(t string) bool {
	return t == TrackBuy || t == TrackSponsor
}

// Agreement session states.
const (
	SessionOpen       = "open"
	SessionSubmitting = "submitting"
)

// AgreementSession is the ephemeral per-selection workflow state. It is
// created when a user opens the agreement dialog for a project and destroyed
// on successful submission or cancellation.
type AgreementSession struct {
	ID             string        `json:"id"`
	SubmitterID    string        `json:"submitterId"`
	Track          string        `json:"track"`
	Project        ProjectRecord `json:"project"`
	AgreementText  string        `json:"agreementText"`
	DocumentName   string        `json:"documentName,omitempty"`
	DocumentBase64 string        `json:"documentBase64,omitempty"`
	Price          int           `json:"price,omitempty"`
	State          string        `json:"state"`
	LastError      string        `json:"lastError,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// HasDocument reports whether a signed agreement has been attached.
func (s *AgreementSession) HasDocument() bool {
	return s.DocumentBase64 != ""
}

// SubmitResult is returned after a successful submission. CheckoutURL is set
// only for the purchase flow, where settlement happens on a hosted checkout
// page the caller must redirect to.
type SubmitResult struct {
	Status      string `json:"status"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
}
