package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/middleware"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

type AuthHandler struct {
	tenants     repositories.TenantRepository
	memberships repositories.MembershipRepository
}

func NewAuthHandler(
	tenants repositories.TenantRepository,
	memberships repositories.MembershipRepository,
) *AuthHandler {
	return &AuthHandler{
		tenants:     tenants,
		memberships: memberships,
	}
}

// HandleRegister creates a tenant owned by the caller. A caller who already
// belongs to a tenant gets that tenant back with 200.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.E(apperr.KindInvalidArgument, "auth.Register", "invalid request body", err)
	}

	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return apperr.E(apperr.KindInvalidArgument, "auth.Register", "company_name is required", nil)
	}

	p := middleware.Principal(c)
	tenant, membership, created, err := h.tenants.Register(c.UserContext(), name, p.UserID)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(models.RegisterResponse{
		TenantID: tenant.ID,
		Name:     tenant.Name,
		Role:     membership.Role,
		Created:  created,
	})
}

func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	memberships, err := h.memberships.ListByUser(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}

	tenants := make([]models.TenantMembership, 0, len(memberships))
	for _, m := range memberships {
		tenants = append(tenants, models.TenantMembership{TenantID: m.TenantID, Role: m.Role})
	}

	return c.JSON(models.MeResponse{
		UserID:  p.UserID,
		Email:   p.Email,
		Tenants: tenants,
	})
}
