package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/service"
)

// ReportsHandler serves dashboard aggregates.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Summary GET /api/reports/summary.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	var resp dto.SummaryResponse
	resp.Landlords.Total = summary.Landlords.Total
	resp.Landlords.Verified = summary.Landlords.Verified
	resp.Landlords.Unverified = summary.Landlords.Unverified
	resp.Landlords.Active = summary.Landlords.Active
	resp.Landlords.Inactive = summary.Landlords.Inactive
	resp.Properties.Total = summary.PropertiesTotal
	resp.Properties.ByStatus = summary.PropertiesStatus
	resp.UsersOnline = summary.UsersOnline
	return c.JSON(fiber.Map{"data": resp})
}
