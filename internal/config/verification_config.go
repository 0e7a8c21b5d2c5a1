package config

import "time"

const (
	// Verification
	MinDescriptionLength = 10
	LegitimateNote       = "Complaint appears legitimate based on content analysis."
	SuspiciousNote       = "Complaint flagged for review - contains suspicious keywords."
	TooShortNote         = "Complaint description is too short. Requires manual review."

	// Submission
	AttachmentBucket   = "complaint-images"
	SuccessNotifyDelay = 2 * time.Second

	// Listing
	ComplaintListLimit    = 20
	MaxComplaintListLimit = 100
	ReferenceCacheTTL     = 10 * time.Minute

	// Recovery of complaints whose verification write failed. Complaints
	// younger than the grace period may still be in their submission.
	PendingVerificationGrace = time.Minute
	ReclassifyBatchSize      = 100
)

// SuspiciousKeywords are matched case-insensitively as substrings of the
// problem description. Order is the order reported in matched keywords.
var SuspiciousKeywords = []string{
	"test",
	"testing",
	"spam",
	"fake",
	"abuse",
}
