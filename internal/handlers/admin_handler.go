package handlers

import (
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	userService *services.UserService
}

func NewAdminHandler(userService *services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var q dto.UserListQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}

	resp, err := h.userService.List(q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	id, err := parseID(c, "id", services.ErrUserNotFound)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.AdminUpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.Update(p, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	id, err := parseID(c, "id", services.ErrUserNotFound)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.userService.Delete(p, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "User deleted"})
}
