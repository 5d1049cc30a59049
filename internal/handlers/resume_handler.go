package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/middleware"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
	"github.com/Jgaps7/curriculos-saas/internal/services"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type ResumeHandler struct {
	resumes     repositories.ResumeRepository
	coordinator services.Coordinator
	index       services.ResumeIndex
	maxFileSize int64
}

// NewResumeHandler builds the handler. index may be nil, which disables search.
func NewResumeHandler(
	resumes repositories.ResumeRepository,
	coordinator services.Coordinator,
	index services.ResumeIndex,
	maxFileSize int64,
) *ResumeHandler {
	return &ResumeHandler{
		resumes:     resumes,
		coordinator: coordinator,
		index:       index,
		maxFileSize: maxFileSize,
	}
}

func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	const op = "resumes.Upload"

	jobID := strings.TrimSpace(c.FormValue("job_id"))
	if jobID == "" {
		return apperr.E(apperr.KindInvalidArgument, op, "job_id is required", nil)
	}

	file, err := c.FormFile("pdf")
	if err != nil {
		return apperr.E(apperr.KindInvalidArgument, op, "pdf file is required", err)
	}
	if file.Size > h.maxFileSize {
		return apperr.E(apperr.KindInvalidArgument, op, fmt.Sprintf("PDF file too large. Max size: %d bytes", h.maxFileSize), nil)
	}

	f, err := file.Open()
	if err != nil {
		return apperr.E(apperr.KindInternal, op, "failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		return apperr.E(apperr.KindInternal, op, "failed to read upload", err)
	}
	if int64(len(data)) > h.maxFileSize {
		return apperr.E(apperr.KindInvalidArgument, op, fmt.Sprintf("PDF file too large. Max size: %d bytes", h.maxFileSize), nil)
	}
	if len(data) == 0 {
		return apperr.E(apperr.KindInvalidArgument, op, "file is empty", nil)
	}
	if http.DetectContentType(data) != "application/pdf" {
		return apperr.E(apperr.KindInvalidArgument, op, "only PDF files are accepted", nil)
	}

	p := middleware.Principal(c)
	resumeID, err := h.coordinator.EnqueueAnalysis(c.UserContext(), p.TenantID, jobID, file.Filename, data)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(models.UploadResponse{
		Status:   models.StatusQueued,
		ResumeID: resumeID,
		TenantID: p.TenantID,
	})
}

func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	filter := listFilter(c)
	if filter.Status != "" && !models.ResumeStatus(filter.Status).Valid() {
		return apperr.E(apperr.KindInvalidArgument, "resumes.List", "unknown status "+filter.Status, nil)
	}

	p := middleware.Principal(c)
	resumes, err := h.resumes.List(c.UserContext(), p.TenantID, filter)
	if err != nil {
		return err
	}
	return c.JSON(models.ListResponse[models.Resume]{Items: resumes, Count: len(resumes)})
}

func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	resume, err := h.resumes.FindByID(c.UserContext(), p.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resume)
}

func (h *ResumeHandler) HandleRetry(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	resume, err := h.coordinator.Retry(c.UserContext(), p.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(models.UploadResponse{
		Status:   resume.Status,
		ResumeID: resume.ID,
		TenantID: resume.TenantID,
	})
}

func (h *ResumeHandler) HandleSearch(c *fiber.Ctx) error {
	const op = "resumes.Search"

	if h.index == nil {
		return apperr.E(apperr.KindUnavailable, op, "similarity search is not configured", nil)
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return apperr.E(apperr.KindInvalidArgument, op, "q is required", nil)
	}

	limit := c.QueryInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	p := middleware.Principal(c)
	hits, err := h.index.Search(c.UserContext(), p.TenantID, query, c.Query("job_id"), limit)
	if err != nil {
		return apperr.E(apperr.KindUnavailable, op, "similarity search failed", err)
	}
	return c.JSON(models.ListResponse[models.SearchHit]{Items: hits, Count: len(hits)})
}
