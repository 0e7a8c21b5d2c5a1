package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nagarajgmcs24/fwdproject/internal/attachment"
	"github.com/nagarajgmcs24/fwdproject/internal/complaint"
	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/nagarajgmcs24/fwdproject/internal/localization"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"github.com/nagarajgmcs24/fwdproject/internal/storage"
	"go.uber.org/zap"
)

type complaintView struct {
	models.Complaint
	WardDisplayName     string `json:"ward_display_name,omitempty"`
	CategoryDisplayName string `json:"category_display_name,omitempty"`
}

func newComplaintView(c models.Complaint, lang string) complaintView {
	view := complaintView{Complaint: c}
	if c.Ward != nil {
		view.WardDisplayName = localization.WardName(*c.Ward, lang)
	}
	if c.Category != nil {
		view.CategoryDisplayName = localization.CategoryName(*c.Category, lang)
	}
	return view
}

// ListComplaints returns the most recent complaints, optionally for one ward.
func (h *Handler) ListComplaints(c *gin.Context) {
	filter := storage.ComplaintFilter{
		WardID: c.Query("ward_id"),
		Limit:  config.ComplaintListLimit,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.respondError(c, &complaint.ValidationError{Fields: []string{"limit"}})
			return
		}
		filter.Limit = limit
	}

	complaints, err := h.Storage.ListComplaints(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	l := lang(c)
	views := make([]complaintView, len(complaints))
	for i, cm := range complaints {
		views[i] = newComplaintView(cm, l)
	}
	c.JSON(http.StatusOK, gin.H{"complaints": views})
}

// complaintID returns the :id path parameter. Ids that are not UUIDs cannot
// name a complaint and are answered with 404 here.
func (h *Handler) complaintID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.respondError(c, complaint.ErrNotFound)
		return "", false
	}
	return id, true
}

// GetComplaint returns a single complaint.
func (h *Handler) GetComplaint(c *gin.Context) {
	id, ok := h.complaintID(c)
	if !ok {
		return
	}
	cm, err := h.Storage.GetComplaintByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newComplaintView(*cm, lang(c)))
}

// SubmitComplaint accepts the multipart complaint form for the ward in the
// path. The photo is sent in the "photo" field.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	req := complaint.SubmitRequest{
		WardID:             c.Param("id"),
		CategoryID:         c.PostForm("category_id"),
		CitizenName:        c.PostForm("citizen_name"),
		CitizenPhone:       c.PostForm("citizen_phone"),
		CitizenEmail:       c.PostForm("citizen_email"),
		LocationDetails:    c.PostForm("location_details"),
		ProblemDescription: c.PostForm("problem_description"),
	}

	file, tooLarge, err := h.readPhoto(c)
	if tooLarge {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": h.message(c, localization.KeyFileTooLarge)})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	req.Attachment = file

	res, err := h.Complaints.Submit(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         h.message(c, localization.KeySuccessMessage),
		"complaint":       newComplaintView(*res.Complaint, lang(c)),
		"classified":      res.Classified,
		"notify_after_ms": res.NotifyAfter.Milliseconds(),
	})
}

// readPhoto returns the uploaded photo, or nil when none was sent so the
// service reports it as a missing field.
func (h *Handler) readPhoto(c *gin.Context) (*attachment.File, bool, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		return nil, false, nil
	}
	if h.MaxUploadBytes > 0 && header.Size > h.MaxUploadBytes {
		return nil, true, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}

	h.Logger.Debug("photo received", zap.String("name", header.Filename), zap.Int64("bytes", header.Size))
	return &attachment.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, false, nil
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus moves a complaint through the operator workflow.
func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := h.complaintID(c)
	if !ok {
		return
	}
	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, &complaint.ValidationError{Fields: []string{"status"}})
		return
	}

	if err := h.Complaints.SetStatus(c.Request.Context(), id, body.Status); err != nil {
		h.respondError(c, err)
		return
	}
	h.Logger.Info("complaint status changed",
		zap.String("complaint_id", id),
		zap.String("status", body.Status),
		zap.String("operator", c.GetString(operatorKey)),
	)
	c.JSON(http.StatusOK, gin.H{"id": id, "status": body.Status})
}

type updateRequest struct {
	UpdateText string `json:"update_text" binding:"required"`
	UpdatedBy  string `json:"updated_by"`
}

// AddUpdate attaches an operator note to a complaint. The author defaults to
// the operator named in the token.
func (h *Handler) AddUpdate(c *gin.Context) {
	id, ok := h.complaintID(c)
	if !ok {
		return
	}
	var body updateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, &complaint.ValidationError{Fields: []string{"update_text"}})
		return
	}
	if body.UpdatedBy == "" {
		body.UpdatedBy = c.GetString(operatorKey)
	}

	update, err := h.Complaints.AddUpdate(c.Request.Context(), id, body.UpdateText, body.UpdatedBy)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, update)
}
