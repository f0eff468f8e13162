package search

import (
	"strings"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

// FacultyAll is the sentinel meaning "do not filter by faculty".
const FacultyAll = "all"

// Filter applies the faculty filter and the free-text search to a track.
// Both conditions are ANDed; the input order is preserved. Pure function,
// recomputed whenever query, filter, or catalog changes.
func Filter(records []domain.ProjectRecord, facultyID, query string) []domain.ProjectRecord {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.ProjectRecord, 0, len(records))
	for _, rec := range records {
		if !matchesFaculty(rec, facultyID) {
			continue
		}
		if query != "" && !matchesQuery(rec, query) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// matchesFaculty is an exact match on faculty id unless the sentinel (or
// nothing) is selected.
func matchesFaculty(rec domain.ProjectRecord, facultyID string) bool {
	if facultyID == "" || facultyID == FacultyAll {
		return true
	}
	return rec.FacultyID == facultyID
}

// matchesQuery is a case-insensitive substring match against every
// user-visible text field of the record.
func matchesQuery(rec domain.ProjectRecord, query string) bool {
	for _, field := range []string{
		rec.Title,
		rec.Description,
		rec.FacultyName,
		rec.UniversityName,
		rec.Technology,
		rec.Department,
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
