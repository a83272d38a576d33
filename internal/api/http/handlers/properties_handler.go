package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/service"
)

// PropertiesHandler exposes listing endpoints for admins and the public site.
type PropertiesHandler struct {
	service *service.PropertyService
}

// NewPropertiesHandler constructs handler.
func NewPropertiesHandler(propertyService *service.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{service: propertyService}
}

// List GET /api/properties and GET /public/properties.
func (h *PropertiesHandler) List(c *fiber.Ctx) error {
	p := parsePage(c)
	filters := service.PropertyListFilters{
		LandlordID: optionalString(c.Query("landlordId", c.Query("landlord_id"))),
		City:       c.Query("city"),
		MinPrice:   parseFloat(c.Query("minPrice", c.Query("min_price"))),
		MaxPrice:   parseFloat(c.Query("maxPrice", c.Query("max_price"))),
		Search:     c.Query("search"),
		Limit:      p.Limit(),
		Offset:     p.Offset(),
	}
	if status := c.Query("status"); status != "" {
		s := domain.PropertyStatus(status)
		filters.Status = &s
	}

	properties, total, err := h.service.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	items := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		items = append(items, dto.NewPropertyResponse(&properties[i]))
	}
	return c.JSON(fiber.Map{"data": items, "pagination": p.Pagination(total)})
}

// Get GET /api/properties/:id and GET /public/properties/:id.
func (h *PropertiesHandler) Get(c *fiber.Ctx) error {
	id, err := resourceID(c, "property")
	if err != nil {
		return err
	}
	property, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPropertyResponse(property)})
}

// Create POST /api/properties.
func (h *PropertiesHandler) Create(c *fiber.Ctx) error {
	var req dto.PropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	property, err := h.service.Create(c.UserContext(), service.PropertyInput{
		LandlordID:  req.LandlordID,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Price:       req.Price,
		Status:      req.Status,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Images:      req.Images,
		Amenities:   req.Amenities,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewPropertyResponse(property),
		"message": "Property created successfully",
	})
}

// Update PUT /api/properties/:id.
func (h *PropertiesHandler) Update(c *fiber.Ctx) error {
	id, err := resourceID(c, "property")
	if err != nil {
		return err
	}
	var req dto.UpdatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	property, err := h.service.Update(c.UserContext(), id, service.PropertyPatch{
		LandlordID:  req.LandlordID,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Price:       req.Price,
		Status:      req.Status,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Images:      req.Images,
		Amenities:   req.Amenities,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewPropertyResponse(property),
		"message": "Property updated successfully",
	})
}

// Delete DELETE /api/properties/:id.
func (h *PropertiesHandler) Delete(c *fiber.Ctx) error {
	id, err := resourceID(c, "property")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Property deleted successfully"})
}
