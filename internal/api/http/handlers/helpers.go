package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/service"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type page struct {
	Number int
	Size   int
}

func (p page) Limit() int  { return p.Size }
func (p page) Offset() int { return (p.Number - 1) * p.Size }

func (p page) Pagination(total int) dto.Pagination {
	return dto.Pagination{Page: p.Number, PageSize: p.Size, Total: total}
}

func parsePage(c *fiber.Ctx) page {
	size := parseInt(c.Query("pageSize", c.Query("page_size")), defaultPageSize)
	if size > maxPageSize {
		size = maxPageSize
	}
	return page{Number: parseInt(c.Query("page"), 1), Size: size}
}

// resourceID reads :id. Malformed ids cannot exist, so they are reported as
// not found rather than reaching the database.
func resourceID(c *fiber.Ctx, resource string) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return id, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		d, dErr := time.Parse("2006-01-02", val)
		if dErr != nil {
			return nil
		}
		t = d
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBool(val string) *bool {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseFloat(val string) *float64 {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func optionalString(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}

func clientInfo(c *fiber.Ctx) service.ClientInfo {
	return service.ClientInfo{IPAddress: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
