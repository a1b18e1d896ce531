package dto

import "github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"

// TourListQuery is bound from the query string of GET /tours.
type TourListQuery struct {
	Page       int    `query:"page" json:"page" validate:"gte=0"`
	Limit      int    `query:"limit" json:"limit" validate:"gte=0,lte=100"`
	Search     string `query:"search" json:"search" validate:"max=100"`
	Status     string `query:"status" json:"status" validate:"omitempty,oneof=draft ready published"`
	ObjectType string `query:"objectType" json:"objectType" validate:"omitempty,oneof=apartment house office commercial"`
	SortField  string `query:"sortField" json:"sortField" validate:"omitempty,oneof=name createdAt updatedAt status views"`
	SortOrder  string `query:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// TourSettingsPatch merges into models.TourSettings field by field. An empty
// StartPanoramaID clears the start panorama.
type TourSettingsPatch struct {
	Logo            *string `json:"logo" validate:"omitempty,oneof=standard custom none"`
	StartPanoramaID *string `json:"startPanoramaId"`
	AutoRotate      *bool   `json:"autoRotate"`
	Compass         *bool   `json:"compass"`
	Debug           *bool   `json:"debug"`
}

type TourMetaDataPatch struct {
	Title       *string   `json:"title" validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Keywords    *[]string `json:"keywords" validate:"omitempty,max=30,dive,max=50"`
	OGImage     *string   `json:"ogImage" validate:"omitempty,max=500"`
}

type CreateTourRequest struct {
	Name        string             `json:"name" validate:"required,notblank,max=100"`
	ObjectType  string             `json:"objectType" validate:"required,oneof=apartment house office commercial"`
	Description string             `json:"description" validate:"max=5000"`
	Tags        []string           `json:"tags" validate:"omitempty,max=30,dive,notblank,max=50"`
	Settings    *TourSettingsPatch `json:"settings"`
	MetaData    *TourMetaDataPatch `json:"metaData"`
}

type UpdateTourRequest struct {
	Name        *string            `json:"name" validate:"omitempty,notblank,max=100"`
	ObjectType  *string            `json:"objectType" validate:"omitempty,oneof=apartment house office commercial"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	Status      *string            `json:"status" validate:"omitempty,oneof=draft ready published"`
	Tags        *[]string          `json:"tags" validate:"omitempty,max=30,dive,notblank,max=50"`
	Settings    *TourSettingsPatch `json:"settings"`
	MetaData    *TourMetaDataPatch `json:"metaData"`
}

type Pagination struct {
	TotalTours  int64 `json:"totalTours"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// PanoramaSummary is the slim panorama shape embedded in tour listings.
type PanoramaSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	DisplayOrder int    `json:"displayOrder"`
}

type TourListItem struct {
	models.Tour
	Panoramas []PanoramaSummary `json:"panoramas"`
}

type TourListResponse struct {
	Tours      []TourListItem `json:"tours"`
	Pagination Pagination     `json:"pagination"`
}

func NewTourListItem(t models.Tour) TourListItem {
	item := TourListItem{Tour: t, Panoramas: make([]PanoramaSummary, 0, len(t.Panoramas))}
	for _, p := range t.Panoramas {
		item.Panoramas = append(item.Panoramas, PanoramaSummary{
			ID:           p.ID.String(),
			Name:         p.Name,
			Filename:     p.Filename,
			URL:          p.URL,
			Status:       p.Status,
			DisplayOrder: p.DisplayOrder,
		})
	}
	item.Tour.Panoramas = nil
	item.Tour.Hotspots = nil
	return item
}

type TourStats struct {
	Total     int64 `json:"total"`
	Draft     int64 `json:"draft"`
	Ready     int64 `json:"ready"`
	Published int64 `json:"published"`
	Panoramas int64 `json:"panoramas"`
	Hotspots  int64 `json:"hotspots"`
	Views     int64 `json:"views"`
}

type ViewsResponse struct {
	Views int64 `json:"views"`
}

// TourDetail always carries the panorama and hotspot arrays, empty or not.
type TourDetail struct {
	models.Tour
	Panoramas []models.Panorama `json:"panoramas"`
	Hotspots  []models.Hotspot  `json:"hotspots"`
}

func NewTourDetail(t *models.Tour) TourDetail {
	d := TourDetail{Tour: *t, Panoramas: t.Panoramas, Hotspots: t.Hotspots}
	if d.Panoramas == nil {
		d.Panoramas = []models.Panorama{}
	}
	if d.Hotspots == nil {
		d.Hotspots = []models.Hotspot{}
	}
	d.Tour.Panoramas, d.Tour.Hotspots = nil, nil
	return d
}
