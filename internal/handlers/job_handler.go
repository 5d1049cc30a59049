package handlers

import (
	"fmt"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/middleware"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

type JobHandler struct {
	jobs          repositories.JobRepository
	strictWeights bool
}

// NewJobHandler builds the handler. With strictWeights set, criterion weights
// must add up to 100.
func NewJobHandler(jobs repositories.JobRepository, strictWeights bool) *JobHandler {
	return &JobHandler{jobs: jobs, strictWeights: strictWeights}
}

func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	jobs, err := h.jobs.List(c.UserContext(), p.TenantID, listFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(models.ListResponse[models.Job]{Items: jobs, Count: len(jobs)})
}

func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	const op = "jobs.Create"

	var req models.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.E(apperr.KindInvalidArgument, op, "invalid request body", err)
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return apperr.E(apperr.KindInvalidArgument, op, "title is required", nil)
	}
	if err := ValidateCriteria(req.Criteria, h.strictWeights); err != nil {
		return err
	}

	p := middleware.Principal(c)
	job := &models.Job{
		TenantID:       p.TenantID,
		Title:          req.Title,
		Description:    req.Description,
		MainActivities: req.MainActivities,
		Prerequisites:  req.Prerequisites,
		Differentials:  req.Differentials,
		Criteria:       req.Criteria,
	}
	if err := h.jobs.Create(c.UserContext(), job); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	job, err := h.jobs.FindByID(c.UserContext(), p.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(job)
}

// ValidateCriteria checks names and 0..100 weights, and the weight sum when
// strict is set.
func ValidateCriteria(criteria []models.Criterion, strict bool) error {
	const op = "jobs.ValidateCriteria"

	var sum float64
	for i, cr := range criteria {
		if strings.TrimSpace(cr.Name) == "" {
			return apperr.E(apperr.KindInvalidArgument, op, fmt.Sprintf("criteria[%d].name is required", i), nil)
		}
		if math.IsNaN(cr.Weight) || cr.Weight < 0 || cr.Weight > 100 {
			return apperr.E(apperr.KindInvalidArgument, op, fmt.Sprintf("criteria[%d].weight must be between 0 and 100", i), nil)
		}
		sum += cr.Weight
	}

	if strict && len(criteria) > 0 && math.Abs(sum-100) > 0.01 {
		return apperr.E(apperr.KindInvalidArgument, op, fmt.Sprintf("criteria weights must add up to 100, got %.2f", sum), nil)
	}
	return nil
}
