package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/observability"
	"github.com/estatehub/estate-service/internal/service"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares. The request logger is
// outermost so it sees the status written by the error handler.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(routePath(c), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// activityTrackingMiddleware refreshes the caller's presence on every request
// and records successful mutations in the activity log. It must run after the
// auth middleware.
func activityTrackingMiddleware(activity *service.ActivityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		user := auth.UserFromContext(c)
		if user == nil {
			return err
		}
		ctx := c.UserContext()
		activity.Touch(ctx, user.ID)

		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			return err
		}
		route := routePath(c)
		action, ok := actionFor(c.Method(), route)
		if !ok {
			return err
		}

		metadata := map[string]any{
			"method":   c.Method(),
			"path":     c.Path(),
			"resource": resourceName(route),
		}
		if id := c.Params("id"); id != "" {
			metadata["resourceId"] = id
		}
		activity.Record(ctx, service.ActivityEntry{
			UserID:      user.ID,
			Action:      action,
			Description: c.Method() + " " + route,
			Metadata:    metadata,
			IPAddress:   c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
		})
		return err
	}
}

// actionFor maps a mutating request to its activity action. Reads are not
// recorded.
func actionFor(method, route string) (domain.ActivityAction, bool) {
	switch {
	case strings.HasSuffix(route, "/verify"):
		return domain.ActionVerify, true
	case strings.HasSuffix(route, "/status"):
		return domain.ActionStatusChange, true
	}
	switch method {
	case fiber.MethodPost:
		return domain.ActionCreate, true
	case fiber.MethodPut, fiber.MethodPatch:
		return domain.ActionUpdate, true
	case fiber.MethodDelete:
		return domain.ActionDelete, true
	}
	return "", false
}

// resourceName returns the first path segment after /api.
func resourceName(route string) string {
	trimmed := strings.TrimPrefix(route, "/api/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func routePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
		return route.Path
	}
	return c.Path()
}
