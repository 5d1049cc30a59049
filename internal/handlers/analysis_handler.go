package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jgaps7/curriculos-saas/internal/middleware"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

type AnalysisHandler struct {
	analyses repositories.AnalysisRepository
}

func NewAnalysisHandler(analyses repositories.AnalysisRepository) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses}
}

// HandleList returns analyses newest first. count is the size of this page.
func (h *AnalysisHandler) HandleList(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	items, err := h.analyses.List(c.UserContext(), p.TenantID, listFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(models.ListResponse[models.Analysis]{Items: items, Count: len(items)})
}
