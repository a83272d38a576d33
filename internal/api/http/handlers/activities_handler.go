package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/service"
)

// ActivitiesHandler exposes the activity log.
type ActivitiesHandler struct {
	service *service.ActivityService
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activityService *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{service: activityService}
}

// List GET /api/activities.
func (h *ActivitiesHandler) List(c *fiber.Ctx) error {
	p := parsePage(c)
	filters := service.ActivityListFilters{
		UserID: optionalString(c.Query("userId", c.Query("user_id"))),
		From:   parseTime(c.Query("from")),
		To:     parseTime(c.Query("to")),
		Limit:  p.Limit(),
		Offset: p.Offset(),
	}
	if action := c.Query("action"); action != "" {
		a := domain.ActivityAction(action)
		filters.Action = &a
	}
	activities, total, err := h.service.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, dto.NewActivityResponse(&activities[i]))
	}
	return c.JSON(fiber.Map{"data": items, "pagination": p.Pagination(total)})
}
