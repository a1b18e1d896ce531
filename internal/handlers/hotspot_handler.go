package handlers

import (
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type HotspotHandler struct {
	hotspotService *services.HotspotService
}

func NewHotspotHandler(hotspotService *services.HotspotService) *HotspotHandler {
	return &HotspotHandler{hotspotService: hotspotService}
}

func (h *HotspotHandler) List(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	hotspots, err := h.hotspotService.ListByTour(p, tourID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(hotspots)
}

// ListByPanorama returns the panorama's hotspots as viewer markers.
func (h *HotspotHandler) ListByPanorama(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}
	panoramaID, err := parseID(c, "id", services.ErrPanoramaNotFound)
	if err != nil {
		return respondError(c, err)
	}

	markers, err := h.hotspotService.ListByPanorama(p, tourID, panoramaID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(markers)
}

func (h *HotspotHandler) Create(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CreateHotspotRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	hotspot, err := h.hotspotService.Create(p, tourID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(hotspot)
}

func (h *HotspotHandler) Update(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id", services.ErrHotspotNotFound)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateHotspotRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	hotspot, err := h.hotspotService.Update(p, tourID, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(hotspot)
}

func (h *HotspotHandler) Delete(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id", services.ErrHotspotNotFound)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.hotspotService.Delete(p, tourID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Hotspot deleted"})
}
