package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/service"
)

// FieldAgentsHandler exposes field agent management.
type FieldAgentsHandler struct {
	service *service.FieldAgentService
}

// NewFieldAgentsHandler constructs handler.
func NewFieldAgentsHandler(agentService *service.FieldAgentService) *FieldAgentsHandler {
	return &FieldAgentsHandler{service: agentService}
}

// List GET /api/field-agents.
func (h *FieldAgentsHandler) List(c *fiber.Ctx) error {
	p := parsePage(c)
	filters := service.FieldAgentListFilters{
		Region: c.Query("region"),
		Limit:  p.Limit(),
		Offset: p.Offset(),
	}
	if status := c.Query("status"); status != "" {
		s := domain.UserStatus(status)
		filters.Status = &s
	}
	agents, err := h.service.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	items := make([]dto.FieldAgentResponse, 0, len(agents))
	for i := range agents {
		items = append(items, dto.NewFieldAgentResponse(&agents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/field-agents.
func (h *FieldAgentsHandler) Create(c *fiber.Ctx) error {
	var req dto.FieldAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	agent, err := h.service.Create(c.UserContext(), service.FieldAgentInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Region: req.Region,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewFieldAgentResponse(agent),
		"message": "Field agent created successfully",
	})
}

// Get GET /api/field-agents/:id.
func (h *FieldAgentsHandler) Get(c *fiber.Ctx) error {
	id, err := resourceID(c, "field agent")
	if err != nil {
		return err
	}
	agent, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewFieldAgentResponse(agent)})
}

// Update PUT /api/field-agents/:id.
func (h *FieldAgentsHandler) Update(c *fiber.Ctx) error {
	id, err := resourceID(c, "field agent")
	if err != nil {
		return err
	}
	var req dto.UpdateFieldAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	agent, err := h.service.Update(c.UserContext(), id, service.FieldAgentPatch{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Region: req.Region,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewFieldAgentResponse(agent),
		"message": "Field agent updated successfully",
	})
}

// Delete DELETE /api/field-agents/:id.
func (h *FieldAgentsHandler) Delete(c *fiber.Ctx) error {
	id, err := resourceID(c, "field agent")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Field agent deleted successfully"})
}
