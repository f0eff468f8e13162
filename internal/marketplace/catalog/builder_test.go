package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/search"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/tracks"
)

// fakeBackend simulates the platform REST backend for builder tests.
type fakeBackend struct {
	faculties     []domain.Faculty
	byFaculty     map[string][]domain.ProjectRecord
	buy           []domain.ProjectRecord
	sponsor       []domain.ProjectRecord
	failFaculties bool
	failFaculty   string // faculty id whose project fetch returns 500
}

func (f *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/faculties":
			if f.failFaculties {
				http.Error(w, `{"message":"service unavailable"}`, http.StatusInternalServerError)
				return
			}
			writeJSON(w, f.faculties)
		case strings.HasPrefix(r.URL.Path, "/fyp-by-faculty-id/"):
			id := strings.TrimPrefix(r.URL.Path, "/fyp-by-faculty-id/")
			if id == f.failFaculty {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			writeJSON(w, f.byFaculty[id])
		case r.URL.Path == "/fyp/for-marketplace/buy":
			writeJSON(w, f.buy)
		case r.URL.Path == "/fyp/for-marketplace/sponsor":
			writeJSON(w, f.sponsor)
		default:
			http.NotFound(w, r)
		}
	}))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		w.Write([]byte("[]"))
		return
	}
	json.NewEncoder(w).Encode(v)
}

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
}

func newTestBuilder(t *testing.T, backend *fakeBackend, year int) (*Builder, func()) {
	t.Helper()
	server := backend.server(t)
	client := NewClient(server.URL, 5*time.Second)
	builder := NewBuilder(client, 100, 100).WithClock(fixedClock(year))
	return builder, server.Close
}

func TestBuild_FacultiesFetchIsFatal(t *testing.T) {
	builder, done := newTestBuilder(t, &fakeBackend{failFaculties: true}, 2026)
	defer done()

	_, err := builder.Build(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestBuild_PartialFacultyFailureIsTolerated(t *testing.T) {
	backend := &fakeBackend{
		faculties: []domain.Faculty{{ID: "f1"}, {ID: "f2"}},
		byFaculty: map[string][]domain.ProjectRecord{
			"f1": {{ID: "p1", Title: "Kept"}},
			"f2": {{ID: "p2", Title: "Lost"}},
		},
		failFaculty: "f2",
	}
	builder, done := newTestBuilder(t, backend, 2026)
	defer done()

	cat, err := builder.Build(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, cat.Projects, 1)
	assert.Equal(t, "p1", cat.Projects[0].ID)
}

func TestBuild_DedupFirstWriterWins(t *testing.T) {
	backend := &fakeBackend{
		faculties: []domain.Faculty{{ID: "f1"}},
		byFaculty: map[string][]domain.ProjectRecord{
			"f1": {{ID: "p1", Title: "Faculty Copy", YearOfCompletion: 2024}},
		},
		buy: []domain.ProjectRecord{
			{ID: "p1", Title: "Marketplace Copy", YearOfCompletion: 2024},
			{ID: "p2", Title: "Marketplace Only", YearOfCompletion: 2024},
		},
		sponsor: []domain.ProjectRecord{
			{ID: "p2", Title: "Duplicate Across Collections", YearOfCompletion: 2030},
		},
	}
	builder, done := newTestBuilder(t, backend, 2026)
	defer done()

	cat, err := builder.Build(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, cat.Projects, 2)

	byID := map[string]domain.ProjectRecord{}
	for _, rec := range cat.Projects {
		byID[rec.ID] = rec
	}
	assert.Equal(t, "Faculty Copy", byID["p1"].Title)
	assert.Equal(t, "Marketplace Only", byID["p2"].Title)
}

func TestBuild_DenormalizesFacultyFields(t *testing.T) {
	backend := &fakeBackend{
		faculties: []domain.Faculty{{
			ID: "f1", FirstName: "Nimal", LastName: "Silva",
			Department: "Computing", UniversityName: "Colombo Tech",
		}},
		byFaculty: map[string][]domain.ProjectRecord{
			"f1": {{ID: "p1", Title: "Portal", YearOfCompletion: 2025}},
		},
	}
	builder, done := newTestBuilder(t, backend, 2026)
	defer done()

	cat, err := builder.Build(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, cat.Projects, 1)

	rec := cat.Projects[0]
	assert.Equal(t, "f1", rec.FacultyID)
	assert.Equal(t, "Nimal Silva", rec.FacultyName)
	assert.Equal(t, "Colombo Tech", rec.UniversityName)
	assert.Equal(t, "Computing", rec.Department)
}

func TestBuild_YearAndMemberDefaults(t *testing.T) {
	backend := &fakeBackend{
		faculties: []domain.Faculty{{ID: "f1"}},
		byFaculty: map[string][]domain.ProjectRecord{
			"f1": {
				{ID: "with-batch", Batch: 2023},
				{ID: "no-year"},
				{ID: "explicit", YearOfCompletion: 2020, Members: 6},
			},
		},
	}
	builder, done := newTestBuilder(t, backend, 2026)
	defer done()

	cat, err := builder.Build(context.Background(), "tok")
	require.NoError(t, err)

	byID := map[string]domain.ProjectRecord{}
	for _, rec := range cat.Projects {
		byID[rec.ID] = rec
	}
	assert.Equal(t, 2027, byID["with-batch"].YearOfCompletion) // batch + 4
	assert.Equal(t, 2030, byID["no-year"].YearOfCompletion)    // currentYear + 4
	assert.Equal(t, 2020, byID["explicit"].YearOfCompletion)
	assert.Equal(t, 4, byID["with-batch"].Members)
	assert.Equal(t, 6, byID["explicit"].Members)
}

func TestBuild_Cancellation(t *testing.T) {
	backend := &fakeBackend{faculties: []domain.Faculty{{ID: "f1"}}}
	builder, done := newTestBuilder(t, backend, 2026)
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := builder.Build(ctx, "tok")
	require.Error(t, err)
}

// End-to-end over builder, splitter and filter: two faculties with one
// project each, completed last year and next year respectively.
func TestBuild_EndToEndTwoFaculties(t *testing.T) {
	backend := &fakeBackend{
		faculties: []domain.Faculty{{ID: "f1"}, {ID: "f2"}},
		byFaculty: map[string][]domain.ProjectRecord{
			"f1": {{ID: "completed", Title: "Done", YearOfCompletion: 2025}},
			"f2": {{ID: "ongoing", Title: "In Progress", YearOfCompletion: 2027}},
		},
	}
	builder, done := newTestBuilder(t, backend, 2026)
	defer done()

	cat, err := builder.Build(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, cat.Projects, 2)

	split := tracks.SplitRecords(cat.Projects, 2026)
	require.Len(t, split.Buy, 1)
	require.Len(t, split.Sponsor, 1)
	assert.Equal(t, "completed", split.Buy[0].ID)
	assert.Equal(t, "ongoing", split.Sponsor[0].ID)

	// Empty query with the "all" sentinel leaves both tracks unchanged.
	assert.Equal(t, split.Buy, search.Filter(split.Buy, search.FacultyAll, ""))
	assert.Equal(t, split.Sponsor, search.Filter(split.Sponsor, search.FacultyAll, ""))
}

func TestCatalog_FindProject(t *testing.T) {
	cat := &Catalog{Projects: []domain.ProjectRecord{{ID: "p1"}, {ID: "p2"}}}

	rec, ok := cat.FindProject("p2")
	require.True(t, ok)
	assert.Equal(t, "p2", rec.ID)

	_, ok = cat.FindProject("nope")
	assert.False(t, ok)
}
