// Package handler exposes the complaint portal over HTTP with gin.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nagarajgmcs24/fwdproject/internal/complaint"
	"github.com/nagarajgmcs24/fwdproject/internal/feed"
	"github.com/nagarajgmcs24/fwdproject/internal/localization"
	"github.com/nagarajgmcs24/fwdproject/internal/storage"
	"go.uber.org/zap"
)

// Handler holds the services the HTTP endpoints call into.
type Handler struct {
	Complaints *complaint.Service
	Storage    storage.Storage
	Hub        *feed.Hub
	Localizer  *localization.Localizer
	Logger     *zap.Logger

	JWTSecret      []byte
	MaxUploadBytes int64
}

func NewHandler(complaints *complaint.Service, s storage.Storage, hub *feed.Hub, localizer *localization.Localizer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Complaints:     complaints,
		Storage:        s,
		Hub:            hub,
		Localizer:      localizer,
		Logger:         logger,
		MaxUploadBytes: 10 << 20,
	}
}

// lang returns the normalized language of the request (?lang=, then
// Accept-Language).
func lang(c *gin.Context) string {
	if l := c.Query("lang"); l != "" {
		return localization.Normalize(l)
	}
	return localization.Normalize(c.GetHeader("Accept-Language"))
}

func (h *Handler) message(c *gin.Context, key string) string {
	if h.Localizer == nil {
		return key
	}
	return h.Localizer.GetString(lang(c), key)
}

// respondError maps service errors to a status and a localized message.
// Everything but validation and lookup failures collapses into the
// generic error message.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *complaint.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.message(c, localization.KeyRequiredField), "fields": verr.Fields})
	case errors.Is(err, complaint.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.message(c, localization.KeyRequiredField)})
	case errors.Is(err, complaint.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": h.message(c, localization.KeyNotFound)})
	default:
		h.Logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.message(c, localization.KeyErrorMessage)})
	}
}
