package dto

type PanoramaMetadataPatch struct {
	InitialYaw   *float64 `json:"initialYaw" validate:"omitempty,gte=-180,lte=180"`
	InitialPitch *float64 `json:"initialPitch" validate:"omitempty,gte=-90,lte=90"`
	FOV          *float64 `json:"fov" validate:"omitempty,gte=10,lte=120"`
	AutoLoad     *bool    `json:"autoLoad"`
	ShowZoomCtrl *bool    `json:"showZoomCtrl"`
}

type UpdatePanoramaRequest struct {
	Name         *string                `json:"name" validate:"omitempty,notblank,max=255"`
	Status       *string                `json:"status" validate:"omitempty,oneof=active inactive"`
	Metadata     *PanoramaMetadataPatch `json:"metadata"`
	DisplayOrder *int                   `json:"displayOrder" validate:"omitempty,gte=0"`
}

// ReorderPanoramasRequest must list every panorama of the tour exactly once.
type ReorderPanoramasRequest struct {
	PanoramaIDs []string `json:"panoramaIds"`
}
