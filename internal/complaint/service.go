// Package complaint implements the submission workflow for citizen
// complaints and the operator operations that act on them afterwards.
package complaint

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nagarajgmcs24/fwdproject/internal/analysis"
	"github.com/nagarajgmcs24/fwdproject/internal/attachment"
	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/nagarajgmcs24/fwdproject/internal/metrics"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"github.com/nagarajgmcs24/fwdproject/internal/storage"
	"go.uber.org/zap"
)

// Notifier alerts operators about complaints that need manual review.
type Notifier interface {
	NotifySuspicious(ctx context.Context, complaint *models.Complaint) error
}

// SubmitRequest is the citizen form plus the photo.
type SubmitRequest struct {
	WardID             string
	CategoryID         string
	CitizenName        string
	CitizenPhone       string
	CitizenEmail       string
	LocationDetails    string
	ProblemDescription string
	Attachment         *attachment.File
}

// Result is returned for a successful submission.
type Result struct {
	Complaint *models.Complaint
	Outcome   analysis.Outcome
	// Classified is false when the verification result could not be
	// written; the stored complaint then stays pending.
	Classified bool
	// InlineImage is true when the upload failed and the image reference is
	// the encoded image itself.
	InlineImage bool
	// NotifyAfter is how long the caller waits before treating the
	// submission as finished (switching to the complaint list).
	NotifyAfter time.Duration
}

// Service handles the business logic for complaints.
type Service struct {
	Storage     storage.Storage
	Attachments attachment.Store
	Notifier    Notifier
	Metrics     *metrics.Collector
	Logger      *zap.Logger

	Bucket      string
	NotifyDelay time.Duration

	now       func() time.Time
	afterFunc func(time.Duration, func())
}

// NewService creates a new complaint service. notifier and collector may be nil.
func NewService(s storage.Storage, attachments attachment.Store, notifier Notifier, collector *metrics.Collector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Storage:     s,
		Attachments: attachments,
		Notifier:    notifier,
		Metrics:     collector,
		Logger:      logger,
		Bucket:      config.AttachmentBucket,
		NotifyDelay: config.SuccessNotifyDelay,
		now:         time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Submit validates the request, stores the photo, creates the complaint and
// classifies it.
//
// A failed upload does not fail the submission: the photo is stored inline
// as a data URL instead. A failed record insert returns a *PersistenceError
// and nothing is classified; a photo uploaded before that point is left in
// the bucket. A failed verification update is logged and the submission is
// still reported as successful.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Result, error) {
	started := s.now()

	if err := validate(req); err != nil {
		s.Metrics.RecordSubmission(metrics.ResultValidationError, started)
		return nil, err
	}

	imageURL, inline := s.storeAttachment(ctx, req.Attachment)

	complaint := &models.Complaint{
		WardID:             req.WardID,
		CategoryID:         req.CategoryID,
		CitizenName:        req.CitizenName,
		CitizenPhone:       req.CitizenPhone,
		LocationDetails:    req.LocationDetails,
		ProblemDescription: req.ProblemDescription,
		ImageURL:           imageURL,
	}
	if req.CitizenEmail != "" {
		email := req.CitizenEmail
		complaint.CitizenEmail = &email
	}

	if err := s.Storage.CreateComplaint(ctx, complaint); err != nil {
		fields := []zap.Field{zap.String("ward_id", req.WardID), zap.Error(err)}
		if !inline {
			fields = append(fields, zap.String("orphaned_image", imageURL))
		}
		s.Logger.Error("failed to create complaint", fields...)
		s.Metrics.RecordSubmission(metrics.ResultPersistenceError, started)
		return nil, &PersistenceError{Err: err}
	}

	outcome, classified := s.classify(ctx, complaint)

	s.publish(ctx, models.ComplaintEvent{
		Type:        models.EventComplaintCreated,
		ComplaintID: complaint.ID,
		WardID:      complaint.WardID,
	})
	s.afterFunc(s.NotifyDelay, func() {
		s.publish(context.Background(), models.ComplaintEvent{
			Type:        models.EventSubmissionSucceeded,
			ComplaintID: complaint.ID,
			WardID:      complaint.WardID,
		})
	})

	if classified && outcome.IsSuspicious() {
		s.notifySuspicious(complaint)
	}

	s.Metrics.RecordSubmission(metrics.ResultSuccess, started)
	s.Logger.Info("complaint submitted",
		zap.String("complaint_id", complaint.ID),
		zap.String("ward_id", complaint.WardID),
		zap.String("verification_status", complaint.VerificationStatus),
		zap.Bool("inline_image", inline),
	)

	return &Result{
		Complaint:   complaint,
		Outcome:     outcome,
		Classified:  classified,
		InlineImage: inline,
		NotifyAfter: s.NotifyDelay,
	}, nil
}

func validate(req SubmitRequest) error {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	check("ward_id", req.WardID)
	check("category_id", req.CategoryID)
	check("citizen_name", req.CitizenName)
	check("citizen_phone", req.CitizenPhone)
	check("location_details", req.LocationDetails)
	check("problem_description", req.ProblemDescription)
	if req.Attachment.Empty() {
		missing = append(missing, "photo")
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// storeAttachment uploads the photo and returns its public URL, or the
// inline data URL when the upload fails.
func (s *Service) storeAttachment(ctx context.Context, file *attachment.File) (string, bool) {
	name := attachment.ObjectName(s.now(), file.Name)
	contentType := attachment.ContentType(file)

	if s.Attachments == nil {
		s.Logger.Warn("no attachment store configured, storing image inline", zap.String("object", name))
		s.Metrics.RecordAttachmentFallback()
		return attachment.DataURL(file), true
	}

	if err := s.Attachments.Put(ctx, s.Bucket, name, contentType, file.Data); err != nil {
		s.Logger.Warn("attachment upload failed, storing image inline",
			zap.String("object", name),
			zap.Int("bytes", len(file.Data)),
			zap.Error(err),
		)
		s.Metrics.RecordAttachmentFallback()
		return attachment.DataURL(file), true
	}

	return s.Attachments.PublicURL(s.Bucket, name), false
}

// classify runs the classifier and writes its outcome back. On a failed
// write the complaint keeps its pending verification status.
func (s *Service) classify(ctx context.Context, complaint *models.Complaint) (analysis.Outcome, bool) {
	outcome := analysis.Classify(complaint.ProblemDescription)
	s.Metrics.RecordClassification(outcome.Status)

	err := s.Storage.UpdateVerification(ctx, complaint.ID, storage.VerificationUpdate{
		Status:          outcome.Status,
		Notes:           outcome.Notes,
		MatchedKeywords: outcome.MatchedKeywords,
	})
	if err != nil {
		s.Logger.Warn("failed to record verification result",
			zap.String("complaint_id", complaint.ID),
			zap.Error(err),
		)
		s.Metrics.RecordClassificationError()
		return outcome, false
	}

	notes := outcome.Notes
	complaint.VerificationStatus = outcome.Status
	complaint.VerificationNotes = &notes
	complaint.MatchedKeywords = outcome.MatchedKeywords
	return outcome, true
}

func (s *Service) publish(ctx context.Context, event models.ComplaintEvent) {
	if err := s.Storage.PublishEvent(ctx, event); err != nil {
		s.Logger.Warn("failed to publish complaint event",
			zap.String("type", event.Type),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err),
		)
	}
}

func (s *Service) notifySuspicious(complaint *models.Complaint) {
	if s.Notifier == nil {
		return
	}
	snapshot := *complaint
	go func() {
		if err := s.Notifier.NotifySuspicious(context.Background(), &snapshot); err != nil {
			s.Logger.Warn("failed to notify operators",
				zap.String("complaint_id", snapshot.ID),
				zap.Error(err),
			)
			s.Metrics.RecordNotificationError()
		}
	}()
}

// SetStatus moves a complaint to another workflow status.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if !models.IsWorkflowStatus(status) {
		return &ValidationError{Fields: []string{"status"}}
	}
	if err := s.Storage.UpdateStatus(ctx, id, status); err != nil {
		return mapNotFound(err)
	}
	s.publish(ctx, s.updatedEvent(ctx, id))
	return nil
}

// AddUpdate attaches an operator note to a complaint.
func (s *Service) AddUpdate(ctx context.Context, id, text, author string) (*models.ComplaintUpdate, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(author) == "" {
		return nil, &ValidationError{Fields: []string{"update_text", "updated_by"}}
	}
	if _, err := s.Storage.GetComplaintByID(ctx, id); err != nil {
		return nil, mapNotFound(err)
	}

	update := &models.ComplaintUpdate{
		ComplaintID: id,
		UpdateText:  text,
		UpdatedBy:   author,
	}
	if err := s.Storage.AddComplaintUpdate(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

// Reclassify runs the classifier again over the stored description. It is
// the recovery path for complaints whose verification write failed.
func (s *Service) Reclassify(ctx context.Context, id string) (analysis.Outcome, error) {
	complaint, err := s.Storage.GetComplaintByID(ctx, id)
	if err != nil {
		return analysis.Outcome{}, mapNotFound(err)
	}

	outcome := analysis.Classify(complaint.ProblemDescription)
	err = s.Storage.UpdateVerification(ctx, id, storage.VerificationUpdate{
		Status:          outcome.Status,
		Notes:           outcome.Notes,
		MatchedKeywords: outcome.MatchedKeywords,
	})
	if err != nil {
		return analysis.Outcome{}, mapNotFound(err)
	}
	s.Metrics.RecordClassification(outcome.Status)
	return outcome, nil
}

func (s *Service) updatedEvent(ctx context.Context, id string) models.ComplaintEvent {
	event := models.ComplaintEvent{Type: models.EventComplaintUpdated, ComplaintID: id}
	if complaint, err := s.Storage.GetComplaintByID(ctx, id); err == nil {
		event.WardID = complaint.WardID
	}
	return event
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
