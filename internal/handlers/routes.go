package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Jgaps7/curriculos-saas/internal/auth"
	"github.com/Jgaps7/curriculos-saas/internal/middleware"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

type Handlers struct {
	Auth     *AuthHandler
	Jobs     *JobHandler
	Resumes  *ResumeHandler
	Analysis *AnalysisHandler
}

func RegisterRoutes(api fiber.Router, gate auth.Gate, h Handlers) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	token := middleware.RequireToken(gate)
	api.Post("/auth/register", token, h.Auth.HandleRegister)
	api.Get("/me", token, h.Auth.HandleMe)

	tenant := middleware.RequireTenant(gate)

	jobs := api.Group("/jobs", tenant)
	jobs.Get("/", h.Jobs.HandleList)
	jobs.Post("/", h.Jobs.HandleCreate)
	jobs.Get("/:id", h.Jobs.HandleGet)

	resumes := api.Group("/resumes", tenant)
	resumes.Post("/upload", h.Resumes.HandleUpload)
	resumes.Get("/", h.Resumes.HandleList)
	resumes.Get("/search", h.Resumes.HandleSearch)
	resumes.Get("/:id", h.Resumes.HandleGet)
	resumes.Post("/:id/retry", h.Resumes.HandleRetry)

	api.Get("/analysis", tenant, h.Analysis.HandleList)
}

func listFilter(c *fiber.Ctx) repositories.ListFilter {
	return repositories.ListFilter{
		JobID:  c.Query("job_id"),
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
}
