package handlers

import (
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PanoramaHandler struct {
	panoramaService *services.PanoramaService
}

func NewPanoramaHandler(panoramaService *services.PanoramaService) *PanoramaHandler {
	return &PanoramaHandler{panoramaService: panoramaService}
}

func (h *PanoramaHandler) List(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	panoramas, err := h.panoramaService.List(p, tourID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(panoramas)
}

// Upload accepts a multipart form with the image under "file" and an
// optional "name".
func (h *PanoramaHandler) Upload(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "FILE_NOT_FOUND", "No file uploaded under field \"file\"")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	pano, err := h.panoramaService.Upload(p, tourID, services.UploadInput{
		Name:             c.FormValue("name"),
		OriginalFilename: fh.Filename,
		ContentType:      fh.Header.Get(fiber.HeaderContentType),
		Size:             fh.Size,
		Body:             f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pano)
}

func (h *PanoramaHandler) Update(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id", services.ErrPanoramaNotFound)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdatePanoramaRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	pano, err := h.panoramaService.Update(p, tourID, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pano)
}

func (h *PanoramaHandler) Delete(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id", services.ErrPanoramaNotFound)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.panoramaService.Delete(p, tourID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Panorama deleted"})
}

func (h *PanoramaHandler) Reorder(c *fiber.Ctx) error {
	p, _ := middleware.GetPrincipal(c)
	tourID, err := parseID(c, "tourId", services.ErrTourNotFound)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.ReorderPanoramasRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	panoramas, err := h.panoramaService.Reorder(p, tourID, req.PanoramaIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(panoramas)
}
