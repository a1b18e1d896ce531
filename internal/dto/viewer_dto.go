package dto

// ViewerHotspot is a marker in the panorama widget's hotSpots format.
type ViewerHotspot struct {
	ID       string  `json:"id"`
	Yaw      float64 `json:"yaw"`
	Pitch    float64 `json:"pitch"`
	Type     string  `json:"type"`
	Text     string  `json:"text"`
	SceneID  string  `json:"sceneId,omitempty"`
	Content  string  `json:"content,omitempty"`
	CSSClass string  `json:"cssClass,omitempty"`
}

type ViewerScene struct {
	Title        string          `json:"title"`
	Type         string          `json:"type"`
	Panorama     string          `json:"panorama"`
	HFOV         float64         `json:"hfov"`
	Yaw          float64         `json:"yaw"`
	Pitch        float64         `json:"pitch"`
	AutoLoad     bool            `json:"autoLoad"`
	ShowZoomCtrl bool            `json:"showZoomCtrl"`
	HotSpots     []ViewerHotspot `json:"hotSpots"`
}

type ViewerDefault struct {
	FirstScene        string  `json:"firstScene"`
	SceneFadeDuration int     `json:"sceneFadeDuration"`
	AutoLoad          bool    `json:"autoLoad"`
	Compass           bool    `json:"compass"`
	AutoRotate        float64 `json:"autoRotate,omitempty"`
}

// ViewerConfig is the multi-scene tour configuration consumed by the
// panorama widget.
type ViewerConfig struct {
	Default ViewerDefault          `json:"default"`
	Scenes  map[string]ViewerScene `json:"scenes"`
}
