package catalog

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

const defaultMembers = 4

// batchOffset is the number of years between a batch's intake and its
// expected completion.
const batchOffset = 4

// Catalog is the unified in-memory snapshot built fresh for every page view.
// It is never cached across requests.
type Catalog struct {
	Faculties []domain.Faculty
	Projects  []domain.ProjectRecord
}

// Builder aggregates project records from the per-faculty lists and the two
// marketplace-specific collections into one deduplicated catalog.
type Builder struct {
	client  *Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewBuilder creates a Builder. rateLimit caps the per-faculty fan-out so a
// large faculty list does not hammer the platform backend.
func NewBuilder(client *Client, rateLimit rate.Limit, burst int) *Builder {
	if rateLimit <= 0 {
		rateLimit = 20
	}
	if burst <= 0 {
		burst = 10
	}
	return &Builder{
		client:  client,
		limiter: rate.NewLimiter(rateLimit, burst),
		now:     time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build fetches and merges the catalog.
//
// The faculty list is mandatory: if it cannot be fetched the whole build
// fails with ErrCatalogUnavailable. Every other fetch is optional — a failing
// faculty or marketplace collection is logged and skipped so one bad source
// never empties the marketplace.
func (b *Builder) Build(ctx context.Context, token string) (*Catalog, error) {
	faculties, err := b.client.ListFaculties(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	// Fan out one fetch per faculty. Results are collected per index so the
	// merge order (and therefore first-writer-wins dedup) stays deterministic
	// regardless of goroutine scheduling.
	results := make([][]domain.ProjectRecord, len(faculties))
	var wg sync.WaitGroup
	for i, f := range faculties {
		wg.Add(1)
		go func(i int, f domain.Faculty) {
			defer wg.Done()
			if err := b.limiter.Wait(ctx); err != nil {
				return
			}
			projects, err := b.client.ListFacultyProjects(ctx, token, f.ID)
			if err != nil {
				log.Printf("[warn] operation=catalog_build faculty_id=%s skipped: %v", f.ID, err)
				return
			}
			results[i] = projects
		}(i, f)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog build cancelled: %w", err)
	}

	facultyByID := make(map[string]domain.Faculty, len(faculties))
	for _, f := range faculties {
		facultyByID[f.ID] = f
	}

	seen := make(map[string]bool)
	var projects []domain.ProjectRecord
	for i, list := range results {
		for _, rec := range list {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			denormalize(&rec, faculties[i])
			b.normalize(&rec)
			projects = append(projects, rec)
		}
	}

	// Marketplace-specific collections: merge only ids not already present.
	for _, track := range []string{domain.TrackBuy, domain.TrackSponsor} {
		extra, err := b.client.ListMarketplace(ctx, token, track)
		if err != nil {
			log.Printf("[warn] operation=catalog_build marketplace=%s skipped: %v", track, err)
			continue
		}
		for _, rec := range extra {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			if f, ok := facultyByID[rec.FacultyID]; ok {
				denormalize(&rec, f)
			}
			b.normalize(&rec)
			projects = append(projects, rec)
		}
	}

	return &Catalog{Faculties: faculties, Projects: projects}, nil
}

// FindProject looks a record up by id in the catalog.
func (c *Catalog) FindProject(id string) (domain.ProjectRecord, bool) {
	for _, rec := range c.Projects {
		if rec.ID == id {
			return rec, true
		}
	}
	return domain.ProjectRecord{}, false
}

// denormalize fills faculty identity fields the backend left blank.
func denormalize(rec *domain.ProjectRecord, f domain.Faculty) {
	if rec.FacultyID == "" {
		rec.FacultyID = f.ID
	}
	if rec.FacultyName == "" {
		rec.FacultyName = f.FullName()
	}
	if rec.UniversityName == "" {
		rec.UniversityName = f.UniversityName
	}
	if rec.Department == "" {
		rec.Department = f.Department
	}
}

// normalize applies the completion-year and member-count defaults.
func (b *Builder) normalize(rec *domain.ProjectRecord) {
	if rec.YearOfCompletion == 0 {
		if rec.Batch > 0 {
			rec.YearOfCompletion = rec.Batch + batchOffset
		} else {
			rec.YearOfCompletion = b.now().Year() + batchOffset
		}
	}
	if rec.Members <= 0 {
		rec.Members = defaultMembers
	}
}
