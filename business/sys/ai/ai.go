// Package ai provides the liveness, redaction and classification services
// consumed by the governance flows. These are deliberately simple stand-ins
// with the same result shapes a real model service would return.
package ai

import (
	"regexp"
	"strings"
)

// Liveness is the result of a liveness check on a selfie.
type Liveness struct {
	Alive      bool    `json:"alive"`
	Confidence float64 `json:"confidence"`
}

// Classification is the result of classifying a complaint.
type Classification struct {
	Category      string `json:"category"`
	Priority      string `json:"priority"`
	PriorityScore int    `json:"priorityScore"`
}

var (
	emailPat = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePat = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3,5}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`)
	idPat    = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)
	namePat  = regexp.MustCompile(`(Mr\.|Mrs\.|Ms\.|Dr\.|Prof\.)\s+[A-Z][a-z]+(\s+[A-Z][a-z]+)?`)
)

// categoryKeywords drive the keyword based category detection. Order
// matters: the first category with the highest hit count wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Infrastructure", []string{"building", "road", "electricity", "water", "wifi", "internet", "lab", "classroom", "toilet", "washroom", "parking"}},
	{"Academic", []string{"exam", "marks", "grade", "syllabus", "lecture", "assignment", "project", "professor", "teacher", "class"}},
	{"Hostel", []string{"hostel", "mess", "food", "room", "warden", "curfew", "laundry", "roommate"}},
	{"Faculty", []string{"professor", "teacher", "faculty", "lecturer", "behaviour", "behavior", "harassment", "discrimination"}},
}

// urgentWords raise the priority score of a complaint.
var urgentWords = []string{"urgent", "immediately", "danger", "unsafe", "emergency", "critical", "harassment", "threat"}

// CheckLiveness simulates liveness detection on a selfie.
func CheckLiveness(imageBase64 string) Liveness {
	return Liveness{
		Alive:      true,
		Confidence: 0.95,
	}
}

// Anonymize removes personally identifying information from text. Emails,
// phone numbers, 12 digit id numbers and titled names are redacted.
func Anonymize(text string) string {
	cleaned := emailPat.ReplaceAllString(text, "[EMAIL REDACTED]")
	cleaned = phonePat.ReplaceAllString(cleaned, "[PHONE REDACTED]")
	cleaned = idPat.ReplaceAllString(cleaned, "[ID REDACTED]")
	cleaned = namePat.ReplaceAllString(cleaned, "[NAME REDACTED]")

	return cleaned
}

// Classify performs keyword based category detection and priority scoring
// for a complaint.
func Classify(text string) Classification {
	lower := strings.ToLower(text)

	category := "Other"
	maxHits := 0
	for _, ck := range categoryKeywords {
		hits := 0
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > maxHits {
			maxHits = hits
			category = ck.category
		}
	}

	urgentHits := 0
	for _, w := range urgentWords {
		if strings.Contains(lower, w) {
			urgentHits++
		}
	}

	lengthScore := float64(len(text)) / 10
	if lengthScore > 20 {
		lengthScore = 20
	}

	score := 30 + urgentHits*20 + int(lengthScore)
	if score > 100 {
		score = 100
	}

	priority := "low"
	switch {
	case score >= 80:
		priority = "critical"
	case score >= 60:
		priority = "high"
	case score >= 40:
		priority = "medium"
	}

	return Classification{
		Category:      category,
		Priority:      priority,
		PriorityScore: score,
	}
}
