package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/service"
)

// UsersHandler exposes dashboard account management.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	p := parsePage(c)
	filters := service.UserListFilters{
		IsOnline: parseBool(c.Query("isOnline", c.Query("is_online"))),
		Search:   c.Query("search"),
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	}
	if role := c.Query("role"); role != "" {
		r := domain.UserRole(role)
		filters.Role = &r
	}
	if status := c.Query("status"); status != "" {
		s := domain.UserStatus(status)
		filters.Status = &s
	}
	users, total, err := h.service.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users), "pagination": p.Pagination(total)})
}

// Online GET /api/users/online.
func (h *UsersHandler) Online(c *fiber.Ctx) error {
	p := parsePage(c)
	users, total, err := h.service.Online(c.UserContext(), p.Limit(), p.Offset())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users), "pagination": p.Pagination(total)})
}

// Create POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	user, err := h.service.Create(c.UserContext(), service.UserCreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		AgentID:    req.AgentID,
		LandlordID: req.LandlordID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewUserResponse(user),
		"message": "User created successfully",
	})
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := resourceID(c, "user")
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := resourceID(c, "user")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	user, err := h.service.Update(c.UserContext(), id, service.UserPatch{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Status:     req.Status,
		AgentID:    req.AgentID,
		LandlordID: req.LandlordID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewUserResponse(user),
		"message": "User updated successfully",
	})
}

// Delete DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := resourceID(c, "user")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), auth.UserFromContext(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return items
}
