package classify

import (
	"hash/fnv"
	"strings"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

// Categories is the fixed closed vocabulary. Order matters: the first rule
// whose keyword set matches wins.
var Categories = []string{"web", "ai", "mobile", "data", "security", "cloud", "iot", "blockchain"}

type rule struct {
	category string
	keywords []string
}

var rules = []rule{
	{"web", []string{"web", "frontend", "backend", "html"}},
	{"ai", []string{"ai", "machine learning", "neural", "deep learning"}},
	{"mobile", []string{"mobile", "android", "ios", "app"}},
	{"data", []string{"data", "analytics", "visualization"}},
	{"security", []string{"security", "cyber", "encryption"}},
	{"cloud", []string{"cloud", "aws", "azure"}},
	{"iot", []string{"iot", "internet of things", "sensor"}},
	{"blockchain", []string{"blockchain", "crypto", "token"}},
}

// Classify assigns exactly one category from the vocabulary. A backend-
// supplied category is kept when it is already a vocabulary member; otherwise
// the record's text is matched against the ordered keyword rules. When
// nothing matches, the fallback is a stable hash of the record id, so the
// same record always lands in the same bucket across page loads.
func Classify(rec domain.ProjectRecord) string {
	if inVocabulary(rec.Category) {
		return rec.Category
	}

	haystack := strings.ToLower(rec.Title + " " + rec.Description + " " + rec.Technology)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(haystack, kw) {
				return r.category
			}
		}
	}

	h := fnv.New32a()
	h.Write([]byte(rec.ID))
	return Categories[h.Sum32()%uint32(len(Categories))]
}

// Apply classifies every record in place and resolves its placeholder image.
func Apply(records []domain.ProjectRecord) {
	for i := range records {
		records[i].Category = Classify(records[i])
		records[i].ImageURL = ImageFor(records[i].Category)
	}
}

var images = map[string]string{
	"web":        "/images/categories/web.jpg",
	"ai":         "/images/categories/ai.jpg",
	"mobile":     "/images/categories/mobile.jpg",
	"data":       "/images/categories/data.jpg",
	"security":   "/images/categories/security.jpg",
	"cloud":      "/images/categories/cloud.jpg",
	"iot":        "/images/categories/iot.jpg",
	"blockchain": "/images/categories/blockchain.jpg",
}

const defaultImage = "/images/categories/default.jpg"

// ImageFor maps a category to its placeholder image URL.
func ImageFor(category string) string {
	if img, ok := images[category]; ok {
		return img
	}
	return defaultImage
}

func inVocabulary(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
