package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/service"
)

// PublicHandler serves unauthenticated endpoints of the public site.
type PublicHandler struct {
	landlords *service.LandlordService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(landlordService *service.LandlordService) *PublicHandler {
	return &PublicHandler{landlords: landlordService}
}

// RegisterLandlord POST /public/landlords/register. New landlords await admin
// verification.
func (h *PublicHandler) RegisterLandlord(c *fiber.Ctx) error {
	var req dto.CreateLandlordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	landlord, err := h.landlords.Create(c.UserContext(), nil, createLandlordInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewLandlordResponse(landlord),
		"message": "Registration received; your account is pending verification",
	})
}
