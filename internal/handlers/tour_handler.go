package handlers

import (
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TourHandler struct {
	tourService *services.TourService
}

func NewTourHandler(tourService *services.TourService) *TourHandler {
	return &TourHandler{tourService: tourService}
}

func (h *TourHandler) List(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)

	var q dto.TourListQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}

	resp, err := h.tourService.List(p, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *TourHandler) Stats(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	stats, err := h.tourService.Stats(p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *TourHandler) Get(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	id, err := parseID(c, "id", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	tour, err := h.tourService.Get(p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTourDetail(tour))
}

func (h *TourHandler) Create(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)

	var req dto.CreateTourRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	tour, err := h.tourService.Create(p, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTourDetail(tour))
}

func (h *TourHandler) Update(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	id, err := parseID(c, "id", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateTourRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	tour, err := h.tourService.Update(p, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTourDetail(tour))
}

func (h *TourHandler) Delete(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	id, err := parseID(c, "id", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.tourService.Delete(p, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Tour deleted"})
}

func (h *TourHandler) Duplicate(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	id, err := parseID(c, "id", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	tour, err := h.tourService.Duplicate(p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTourDetail(tour))
}

// GetPublic serves a published tour without authentication.
func (h *TourHandler) GetPublic(c *fiber.Ctx) error {
	id, err := parseID(c, "id", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	tour, err := h.tourService.GetPublic(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTourDetail(tour))
}

func (h *TourHandler) Viewer(c *fiber.Ctx) error {
	id, err := parseID(c, "id", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	cfg, err := h.tourService.ViewerConfig(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

func (h *TourHandler) IncrementViews(c *fiber.Ctx) error {
	id, err := parseID(c, "id", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	views, err := h.tourService.IncrementViews(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ViewsResponse{Views: views})
}
