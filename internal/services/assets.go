package services

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
)

// ContentStore persists uploaded images under generated names.
type ContentStore interface {
	Save(src io.Reader, ext string) (name string, size int64, err error)
	Copy(name string) (string, error)
	Remove(name string) error
}

// Assets pairs the content store with the public URL prefix it is served
// under.
type Assets struct {
	Store      ContentStore
	PublicPath string
}

func NewAssets(store ContentStore, publicPath string) *Assets {
	return &Assets{Store: store, PublicPath: strings.TrimRight(publicPath, "/")}
}

func (a *Assets) URL(filename string) string {
	return a.PublicPath + "/" + filename
}

func (a *Assets) withURL(p *models.Panorama) {
	p.URL = a.URL(p.Filename)
}

func (a *Assets) withURLs(ps []models.Panorama) {
	for i := range ps {
		a.withURL(&ps[i])
	}
}

// removeFiles deletes stored files after a committed delete. Failures are
// logged and counted, never returned.
func (a *Assets) removeFiles(names []string) {
	for _, name := range names {
		if err := a.Store.Remove(name); err != nil {
			metrics.FileCleanupFailures.Inc()
			slog.Warn("failed to remove stored file", "filename", name, "error", err)
		}
	}
}
