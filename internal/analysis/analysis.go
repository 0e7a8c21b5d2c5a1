// Package analysis provides the rule-based verification of complaint text.
// It decides whether a complaint looks legitimate or should be held for
// manual review, without any external signal.
package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
)

// Outcome is the verification result for one complaint description.
type Outcome struct {
	Status          string
	Notes           string
	MatchedKeywords []string
}

// IsSuspicious reports whether the outcome requires manual review.
func (o Outcome) IsSuspicious() bool {
	return o.Status == models.VerificationSuspicious
}

// Classify maps a problem description to a verification outcome.
//
// Rules apply in order and later rules override earlier ones: the default
// is legitimate, any suspicious keyword (case-insensitive substring) flags
// the complaint, and a description shorter than MinDescriptionLength
// characters is flagged with the too-short note regardless of keywords.
// Classify is pure; the same text always yields the same outcome.
func Classify(text string) Outcome {
	outcome := Outcome{
		Status: models.VerificationLegitimate,
		Notes:  config.LegitimateNote,
	}

	outcome.MatchedKeywords = MatchKeywords(text)
	if len(outcome.MatchedKeywords) > 0 {
		outcome.Status = models.VerificationSuspicious
		outcome.Notes = config.SuspiciousNote
	}

	// Length is counted in code points, before trimming.
	if utf8.RuneCountInString(text) < config.MinDescriptionLength {
		outcome.Status = models.VerificationSuspicious
		outcome.Notes = config.TooShortNote
	}

	return outcome
}

// MatchKeywords returns the suspicious keywords contained in text, in the
// order of config.SuspiciousKeywords. It returns nil when none match.
func MatchKeywords(text string) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, keyword := range config.SuspiciousKeywords {
		if strings.Contains(lower, keyword) {
			matched = append(matched, keyword)
		}
	}
	return matched
}
