package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/service"
)

// LandlordsHandler exposes landlord management endpoints.
type LandlordsHandler struct {
	service *service.LandlordService
}

// NewLandlordsHandler constructs handler.
func NewLandlordsHandler(landlordService *service.LandlordService) *LandlordsHandler {
	return &LandlordsHandler{service: landlordService}
}

// List GET /api/landlords.
func (h *LandlordsHandler) List(c *fiber.Ctx) error {
	p := parsePage(c)
	filters := service.LandlordListFilters{
		IsVerified: parseBool(c.Query("isVerified", c.Query("is_verified"))),
		Search:     c.Query("search"),
		Limit:      p.Limit(),
		Offset:     p.Offset(),
	}
	if status := c.Query("status"); status != "" {
		s := domain.LandlordStatus(status)
		filters.Status = &s
	}

	landlords, total, err := h.service.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	items := make([]dto.LandlordResponse, 0, len(landlords))
	for i := range landlords {
		items = append(items, dto.NewLandlordResponse(&landlords[i]))
	}
	return c.JSON(fiber.Map{"data": items, "pagination": p.Pagination(total)})
}

// Create POST /api/landlords.
func (h *LandlordsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLandlordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	landlord, err := h.service.Create(c.UserContext(), auth.UserFromContext(c), createLandlordInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewLandlordResponse(landlord),
		"message": "Landlord created successfully",
	})
}

// Get GET /api/landlords/:id.
func (h *LandlordsHandler) Get(c *fiber.Ctx) error {
	id, err := resourceID(c, "landlord")
	if err != nil {
		return err
	}
	landlord, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLandlordResponse(landlord)})
}

// Update PUT /api/landlords/:id.
func (h *LandlordsHandler) Update(c *fiber.Ctx) error {
	id, err := resourceID(c, "landlord")
	if err != nil {
		return err
	}
	var req dto.UpdateLandlordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	result, err := h.service.Update(c.UserContext(), auth.UserFromContext(c), id, domain.LandlordPatch{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		CompanyName:     req.CompanyName,
		Address:         req.Address,
		IsVerified:      req.IsVerified,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
		InactiveReason:  req.InactiveReason,
	})
	if err != nil {
		return err
	}
	return lifecycleResponse(c, result)
}

// Verify PATCH /api/landlords/:id/verify.
func (h *LandlordsHandler) Verify(c *fiber.Ctx) error {
	id, err := resourceID(c, "landlord")
	if err != nil {
		return err
	}
	var req dto.VerifyLandlordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	input := service.VerifyInput{RejectionReason: req.RejectionReason, Password: req.Password}
	if verified, ok := req.IsVerified.(bool); ok {
		input.IsVerified = &verified
	}
	result, err := h.service.Verify(c.UserContext(), auth.UserFromContext(c), id, input)
	if err != nil {
		return err
	}
	return lifecycleResponse(c, result)
}

// UpdateStatus PATCH /api/landlords/:id/status.
func (h *LandlordsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := resourceID(c, "landlord")
	if err != nil {
		return err
	}
	var req dto.UpdateLandlordStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	result, err := h.service.UpdateStatus(c.UserContext(), auth.UserFromContext(c), id, service.StatusInput{
		Status:         req.Status,
		InactiveReason: req.InactiveReason,
	})
	if err != nil {
		return err
	}
	return lifecycleResponse(c, result)
}

// Delete DELETE /api/landlords/:id.
func (h *LandlordsHandler) Delete(c *fiber.Ctx) error {
	id, err := resourceID(c, "landlord")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), auth.UserFromContext(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Landlord deleted successfully"})
}

func createLandlordInput(req dto.CreateLandlordRequest) service.LandlordCreateInput {
	return service.LandlordCreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Address:     req.Address,
	}
}

func lifecycleResponse(c *fiber.Ctx, result *service.LandlordResult) error {
	return c.JSON(fiber.Map{
		"data":          dto.NewLandlordResponse(result.Landlord),
		"message":       result.Message,
		"notifications": dto.NewNotificationResponses(result.Notifications),
	})
}
