package dto

type HotspotPositionPatch struct {
	Yaw   *float64 `json:"yaw" validate:"omitempty,gte=-180,lte=180"`
	Pitch *float64 `json:"pitch" validate:"omitempty,gte=-90,lte=90"`
	Z     *float64 `json:"z"`
}

type HotspotParametersPatch struct {
	ShowTooltip *bool `json:"showTooltip"`
	Delay       *int  `json:"delay" validate:"omitempty,gte=0,lte=60000"`
	Clickable   *bool `json:"clickable"`
}

type CreateHotspotRequest struct {
	Name             string                  `json:"name" validate:"required,notblank,max=255"`
	PanoramaID       string                  `json:"panoramaId" validate:"required,uuid"`
	TargetPanoramaID *string                 `json:"targetPanoramaId" validate:"omitempty,uuid"`
	Type             *string                 `json:"type" validate:"omitempty,oneof=scene info"`
	Position         *HotspotPositionPatch   `json:"position"`
	Content          *string                 `json:"content" validate:"omitempty,max=5000"`
	CSSClass         *string                 `json:"cssClass" validate:"omitempty,max=100"`
	Parameters       *HotspotParametersPatch `json:"parameters"`
}

// UpdateHotspotRequest patches a hotspot. An empty TargetPanoramaID clears
// the target.
type UpdateHotspotRequest struct {
	Name             *string                 `json:"name" validate:"omitempty,notblank,max=255"`
	TargetPanoramaID *string                 `json:"targetPanoramaId"`
	Type             *string                 `json:"type" validate:"omitempty,oneof=scene info"`
	Position         *HotspotPositionPatch   `json:"position"`
	Content          *string                 `json:"content" validate:"omitempty,max=5000"`
	CSSClass         *string                 `json:"cssClass" validate:"omitempty,max=100"`
	Parameters       *HotspotParametersPatch `json:"parameters"`
}
