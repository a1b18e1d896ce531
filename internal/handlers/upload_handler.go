package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UploadHandler serves stored panorama images by generated name.
type UploadHandler struct {
	store *storage.LocalStore
}

func NewUploadHandler(store *storage.LocalStore) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) Serve(c *fiber.Ctx) error {
	name := c.Params("filename")
	path, err := h.store.Path(name)
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "File not found")
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "File not found")
	}

	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		contentType = fiber.MIMEOctetStream
	}
	if err := c.SendFile(path); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return nil
}
