package agreement

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

// The agreement shown in the confirmation dialog. One template per track;
// record fields are substituted into fixed legal-style text.

const buyAgreementText = `PROJECT PURCHASE AGREEMENT

Date: {{.Date}}

This agreement concerns the completed final-year project "{{.Title}}" (reference {{.ProjectID}}),
developed under the supervision of {{.FacultyName}}, {{.Department}}, {{.UniversityName}}{{if .Students}},
by {{.Students}}{{end}}.

By confirming, the requesting party ({{.SubmitterID}}) agrees to acquire the rights to the
above project under the terms negotiated with the supervising faculty, with payment settled
through the platform's checkout provider. All intellectual property transfers only upon
completion of payment.
`

const sponsorAgreementText = `PROJECT SPONSORSHIP AGREEMENT

Date: {{.Date}}

This agreement concerns the ongoing final-year project "{{.Title}}" (reference {{.ProjectID}}),
conducted under the supervision of {{.FacultyName}}, {{.Department}}, {{.UniversityName}}{{if .Students}},
by {{.Students}}{{end}}.

By confirming, the sponsoring party ({{.SubmitterID}}) agrees to fund the continued development
of the above project. Sponsorship grants visibility into project progress and first right of
refusal on the completed work, but does not transfer intellectual property.
`

var (
	buyTemplate     = template.Must(template.New("buy").Parse(buyAgreementText))
	sponsorTemplate = template.Must(template.New("sponsor").Parse(sponsorAgreementText))
)

type templateData struct {
	Date           string
	Title          string
	ProjectID      string
	FacultyName    string
	Department     string
	UniversityName string
	Students       string
	SubmitterID    string
}

// RenderAgreement produces the human-readable agreement text for a track.
func RenderAgreement(track string, rec domain.ProjectRecord, submitterID string, now time.Time) (string, error) {
	tmpl := buyTemplate
	if track == domain.TrackSponsor {
		tmpl = sponsorTemplate
	}

	data := templateData{
		Date:           now.Format("January 2, 2006"),
		Title:          rec.Title,
		ProjectID:      rec.ID,
		FacultyName:    rec.FacultyName,
		Department:     rec.Department,
		UniversityName: rec.UniversityName,
		Students:       strings.Join(rec.StudentNames, ", "),
		SubmitterID:    submitterID,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render agreement: %w", err)
	}
	return buf.String(), nil
}
