package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nagarajgmcs24/fwdproject/internal/localization"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"golang.org/x/sync/errgroup"
)

type wardView struct {
	models.Ward
	DisplayName string `json:"display_name"`
}

type categoryView struct {
	models.ProblemCategory
	DisplayName string `json:"display_name"`
}

func wardViews(wards []models.Ward, lang string) []wardView {
	views := make([]wardView, len(wards))
	for i, w := range wards {
		views[i] = wardView{Ward: w, DisplayName: localization.WardName(w, lang)}
	}
	return views
}

func categoryViews(categories []models.ProblemCategory, lang string) []categoryView {
	views := make([]categoryView, len(categories))
	for i, cat := range categories {
		views[i] = categoryView{ProblemCategory: cat, DisplayName: localization.CategoryName(cat, lang)}
	}
	return views
}

// ListWards returns all wards ordered by ward number.
func (h *Handler) ListWards(c *gin.Context) {
	wards, err := h.Storage.ListWards(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wards": wardViews(wards, lang(c))})
}

// ListCategories returns all problem categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Storage.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categoryViews(categories, lang(c))})
}

// GetOptions returns everything the complaint form needs in one call.
func (h *Handler) GetOptions(c *gin.Context) {
	var (
		wards      []models.Ward
		categories []models.ProblemCategory
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		wards, err = h.Storage.ListWards(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.Storage.ListCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.respondError(c, err)
		return
	}

	l := lang(c)
	c.JSON(http.StatusOK, gin.H{
		"language":   l,
		"wards":      wardViews(wards, l),
		"categories": categoryViews(categories, l),
	})
}
