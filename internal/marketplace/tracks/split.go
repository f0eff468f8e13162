package tracks

import "github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"

// Split holds the two marketplace partitions: completed projects available
// for purchase, and ongoing projects open for sponsorship.
type Split struct {
	Buy     []domain.ProjectRecord
	Sponsor []domain.ProjectRecord
}

// SplitRecords partitions the catalog by completion year and approval status.
//
// The two membership predicates are evaluated independently rather than as an
// if/else: a record with no completion year and no approval satisfies neither
// and is listed in neither track. That gap is long-standing observed behavior
// and callers (and tests) rely on it staying put.
func SplitRecords(records []domain.ProjectRecord, currentYear int) Split {
	var s Split
	for _, rec := range records {
		if inBuy(rec, currentYear) {
			s.Buy = append(s.Buy, rec)
		}
		if inSponsor(rec, currentYear) {
			s.Sponsor = append(s.Sponsor, rec)
		}
	}
	return s
}

func inBuy(rec domain.ProjectRecord, currentYear int) bool {
	if rec.YearOfCompletion != 0 && rec.YearOfCompletion <= currentYear {
		return true
	}
	return rec.Status == domain.StatusApproved &&
		(rec.YearOfCompletion == 0 || rec.YearOfCompletion <= currentYear)
}

func inSponsor(rec domain.ProjectRecord, currentYear int) bool {
	// The approved-status clause only ever agrees with the year comparison
	// here, so membership reduces to a future completion year.
	return rec.YearOfCompletion != 0 && rec.YearOfCompletion > currentYear
}

// For selects one track from the split. Track must be a valid track name.
func (s Split) For(track string) []domain.ProjectRecord {
	if track == domain.TrackSponsor {
		return s.Sponsor
	}
	return s.Buy
}
