package models

// Complaint event types carried over Redis pub/sub and the WebSocket feed.
const (
	EventComplaintCreated    = "complaint_created"
	EventSubmissionSucceeded = "submission_succeeded"
	EventComplaintUpdated    = "complaint_updated"
)

// ComplaintEvent tells feed listeners that the complaint list changed and
// should be re-queried. It carries identifiers only, never the record.
type ComplaintEvent struct {
	Type        string `json:"type"`
	ComplaintID string `json:"complaint_id"`
	WardID      string `json:"ward_id"`
}
