package services

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copySuffix = " (copy)"

var tourSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"status":    "status",
	"views":     "views",
}

type TourService struct {
	db     *gorm.DB
	assets *Assets
}

func NewTourService(db *gorm.DB, assets *Assets) *TourService {
	return &TourService{db: db, assets: assets}
}

func orderedPanoramaPreload(db *gorm.DB) *gorm.DB {
	return db.Order(panoramaOrder)
}

func (s *TourService) List(p Principal, q dto.TourListQuery) (*dto.TourListResponse, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(scopeTours(p))
		if q.Search != "" {
			like := "%" + strings.ToLower(q.Search) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
		}
		if q.Status != "" {
			db = db.Where("status = ?", q.Status)
		}
		if q.ObjectType != "" {
			db = db.Where("object_type = ?", q.ObjectType)
		}
		return db
	}

	var total int64
	if err := s.db.Model(&models.Tour{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count tours: %w", err)
	}

	column, ok := tourSortColumns[q.SortField]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(q.SortOrder, "asc")

	var tours []models.Tour
	err := s.db.Scopes(filter).
		Preload("Panoramas", orderedPanoramaPreload).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order("id ASC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&tours).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}

	resp := &dto.TourListResponse{
		Tours: make([]dto.TourListItem, 0, len(tours)),
		Pagination: dto.Pagination{
			TotalTours:  total,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
			Limit:       limit,
		},
	}
	for i := range tours {
		s.assets.withURLs(tours[i].Panoramas)
		resp.Tours = append(resp.Tours, dto.NewTourListItem(tours[i]))
	}
	return resp, nil
}

// Get returns the tour with its panoramas and hotspots.
func (s *TourService) Get(p Principal, id uuid.UUID) (*models.Tour, error) {
	tour, err := loadTourForRead(s.db, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(s.db, tour, false); err != nil {
		return nil, err
	}
	return tour, nil
}

func (s *TourService) loadChildren(db *gorm.DB, tour *models.Tour, activeOnly bool) error {
	pq := db.Where("tour_id = ?", tour.ID)
	if activeOnly {
		pq = pq.Where("status = ?", models.PanoramaStatusActive)
	}
	if err := pq.Order(panoramaOrder).Find(&tour.Panoramas).Error; err != nil {
		return fmt.Errorf("failed to load panoramas: %w", err)
	}
	s.assets.withURLs(tour.Panoramas)

	hq := db.Where("tour_id = ?", tour.ID)
	if activeOnly {
		ids := make([]uuid.UUID, len(tour.Panoramas))
		for i := range tour.Panoramas {
			ids[i] = tour.Panoramas[i].ID
		}
		if len(ids) == 0 {
			tour.Hotspots = []models.Hotspot{}
			return nil
		}
		hq = hq.Where("panorama_id IN ?", ids)
	}
	if err := hq.Order("created_at ASC, id ASC").Find(&tour.Hotspots).Error; err != nil {
		return fmt.Errorf("failed to load hotspots: %w", err)
	}
	return nil
}

func (s *TourService) Create(p Principal, req *dto.CreateTourRequest) (*models.Tour, error) {
	tour := models.Tour{
		ID:          uuid.New(),
		UserID:      p.UserID,
		Name:        strings.TrimSpace(req.Name),
		ObjectType:  req.ObjectType,
		Description: req.Description,
		Status:      models.TourStatusDraft,
		Tags:        datatypes.JSONSlice[string](nonNilStrings(req.Tags)),
	}

	// The tour has no panoramas yet, so any start panorama is rejected.
	settings, err := mergeTourSettings(s.db, tour.ID, models.DefaultTourSettings(), req.Settings)
	if err != nil {
		return nil, err
	}
	meta := mergeTourMetaData(models.TourMetaData{Keywords: []string{}}, req.MetaData)
	tour.Settings = datatypes.NewJSONType(settings)
	tour.MetaData = datatypes.NewJSONType(meta)

	if err := s.db.Omit(clause.Associations).Create(&tour).Error; err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}

	metrics.ToursCreated.Inc()
	slog.Info("tour created", "tour_id", tour.ID.String(), "user_id", p.UserID.String())
	return &tour, nil
}

// Update applies a partial update. Publishing requires an active panorama
// and pins the start panorama to an active one.
func (s *TourService) Update(p Principal, id uuid.UUID, req *dto.UpdateTourRequest) (*models.Tour, error) {
	var tour *models.Tour
	published := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		tour, err = loadTourForWrite(tx, p, id)
		if err != nil {
			return err
		}
		wasPublished := tour.IsPublished()

		if req.Name != nil {
			tour.Name = strings.TrimSpace(*req.Name)
		}
		if req.ObjectType != nil {
			tour.ObjectType = *req.ObjectType
		}
		if req.Description != nil {
			tour.Description = *req.Description
		}
		if req.Tags != nil {
			tour.Tags = datatypes.JSONSlice[string](nonNilStrings(*req.Tags))
		}
		if req.Status != nil {
			tour.Status = *req.Status
		}

		settings, err := mergeTourSettings(tx, tour.ID, tour.Settings.Data(), req.Settings)
		if err != nil {
			return err
		}
		tour.MetaData = datatypes.NewJSONType(mergeTourMetaData(tour.MetaData.Data(), req.MetaData))

		if tour.IsPublished() {
			active, err := countActivePanoramas(tx, tour.ID)
			if err != nil {
				return err
			}
			if active == 0 {
				return ErrNoPanoramas
			}
			if settings.StartPanoramaID, err = activeStart(tx, tour.ID, settings.StartPanoramaID); err != nil {
				return err
			}
			published = !wasPublished
		}
		tour.Settings = datatypes.NewJSONType(settings)

		// views only moves through IncrementViews.
		if err := tx.Omit(clause.Associations, "views").Save(tour).Error; err != nil {
			return fmt.Errorf("failed to update tour: %w", err)
		}
		if err := tx.Model(&models.Tour{}).Select("views").Where("id = ?", tour.ID).Scan(&tour.Views).Error; err != nil {
			return fmt.Errorf("failed to reload tour views: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if published {
		metrics.ToursPublished.Inc()
		slog.Info("tour published", "tour_id", tour.ID.String(), "user_id", p.UserID.String())
	}
	return tour, nil
}

// activeStart keeps start when it names an active panorama, otherwise it
// returns the first active panorama of the tour.
func activeStart(tx *gorm.DB, tourID uuid.UUID, start *uuid.UUID) (*uuid.UUID, error) {
	if start != nil {
		var n int64
		err := tx.Model(&models.Panorama{}).
			Where("id = ? AND tour_id = ? AND status = ?", *start, tourID, models.PanoramaStatusActive).
			Count(&n).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check start panorama: %w", err)
		}
		if n > 0 {
			return start, nil
		}
	}
	first, err := firstActivePanorama(tx, tourID, nil)
	if err != nil || first == nil {
		return nil, err
	}
	return &first.ID, nil
}

func (s *TourService) Delete(p Principal, id uuid.UUID) error {
	var filenames []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadTourForWrite(tx, p, id); err != nil {
			return err
		}
		var err error
		filenames, err = deleteToursTx(tx, []uuid.UUID{id})
		return err
	})
	if err != nil {
		return err
	}

	metrics.ToursDeleted.Inc()
	s.assets.removeFiles(filenames)
	slog.Info("tour deleted", "tour_id", id.String(), "user_id", p.UserID.String(), "files", len(filenames))
	return nil
}

// Duplicate deep-copies a tour for the caller: panoramas get new ids and
// copied files, hotspots and the start panorama are remapped onto the
// copies, and the clone starts as an unviewed draft.
func (s *TourService) Duplicate(p Principal, id uuid.UUID) (*models.Tour, error) {
	var clone models.Tour
	var copied []string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		src, err := loadTourForWrite(tx, p, id)
		if err != nil {
			return err
		}
		if err := s.loadChildren(tx, src, false); err != nil {
			return err
		}

		idMap := make(map[uuid.UUID]uuid.UUID, len(src.Panoramas))
		panoramas := make([]models.Panorama, 0, len(src.Panoramas))
		clone = models.Tour{
			ID:          uuid.New(),
			UserID:      p.UserID,
			Name:        copyName(src.Name),
			ObjectType:  src.ObjectType,
			Description: src.Description,
			Status:      models.TourStatusDraft,
			Tags:        datatypes.JSONSlice[string](nonNilStrings(src.Tags)),
			MetaData:    datatypes.NewJSONType(src.MetaData.Data()),
			Views:       0,
		}

		for _, sp := range src.Panoramas {
			filename, err := s.assets.Store.Copy(sp.Filename)
			if err != nil {
				return fmt.Errorf("failed to copy panorama file %s: %w", sp.Filename, err)
			}
			copied = append(copied, filename)

			np := sp
			np.ID = uuid.New()
			np.TourID = clone.ID
			np.Filename = filename
			np.CreatedAt, np.UpdatedAt = time.Time{}, time.Time{}
			idMap[sp.ID] = np.ID
			panoramas = append(panoramas, np)
		}

		settings := src.Settings.Data()
		settings.StartPanoramaID = remap(idMap, settings.StartPanoramaID)
		clone.Settings = datatypes.NewJSONType(settings)

		hotspots := make([]models.Hotspot, 0, len(src.Hotspots))
		for _, sh := range src.Hotspots {
			nh := sh
			nh.ID = uuid.New()
			nh.TourID = clone.ID
			nh.PanoramaID = idMap[sh.PanoramaID]
			nh.TargetPanoramaID = remap(idMap, sh.TargetPanoramaID)
			nh.CreatedAt, nh.UpdatedAt = time.Time{}, time.Time{}
			hotspots = append(hotspots, nh)
		}

		if err := tx.Omit(clause.Associations).Create(&clone).Error; err != nil {
			return fmt.Errorf("failed to create tour copy: %w", err)
		}
		if len(panoramas) > 0 {
			if err := tx.Create(&panoramas).Error; err != nil {
				return fmt.Errorf("failed to copy panoramas: %w", err)
			}
		}
		if len(hotspots) > 0 {
			if err := tx.Create(&hotspots).Error; err != nil {
				return fmt.Errorf("failed to copy hotspots: %w", err)
			}
		}

		s.assets.withURLs(panoramas)
		clone.Panoramas = panoramas
		clone.Hotspots = hotspots
		return nil
	})
	if err != nil {
		s.assets.removeFiles(copied)
		return nil, err
	}

	metrics.ToursDuplicated.Inc()
	slog.Info("tour duplicated", "tour_id", clone.ID.String(), "source_tour_id", id.String(), "user_id", p.UserID.String())
	return &clone, nil
}

func remap(idMap map[uuid.UUID]uuid.UUID, id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	mapped, ok := idMap[*id]
	if !ok {
		return nil
	}
	return &mapped
}

func copyName(name string) string {
	const max = 100
	if utf8.RuneCountInString(name)+len(copySuffix) > max {
		runes := []rune(name)
		name = string(runes[:max-len(copySuffix)])
	}
	return name + copySuffix
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}

// IncrementViews atomically bumps the view counter of a published tour and
// returns the new count.
func (s *TourService) IncrementViews(id uuid.UUID) (int64, error) {
	var views int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Tour{}).
			Where("id = ? AND status = ?", id, models.TourStatusPublished).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to increment views: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTourNotFound
		}
		return tx.Model(&models.Tour{}).Where("id = ?", id).Select("views").Row().Scan(&views)
	})
	if err != nil {
		return 0, err
	}
	metrics.TourViews.Inc()
	return views, nil
}

func (s *TourService) Stats(p Principal) (*dto.TourStats, error) {
	stats := &dto.TourStats{}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Tour{}).Scopes(scopeTours(p)).
		Select("status, COUNT(*) AS count").Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tours: %w", err)
	}
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Status {
		case models.TourStatusDraft:
			stats.Draft = r.Count
		case models.TourStatusReady:
			stats.Ready = r.Count
		case models.TourStatusPublished:
			stats.Published = r.Count
		}
	}

	if err := s.db.Model(&models.Tour{}).Scopes(scopeTours(p)).
		Select("COALESCE(SUM(views), 0)").Row().Scan(&stats.Views); err != nil {
		return nil, fmt.Errorf("failed to sum views: %w", err)
	}

	owned := s.db.Model(&models.Tour{}).Scopes(scopeTours(p)).Select("id")
	if err := s.db.Model(&models.Panorama{}).Where("tour_id IN (?)", owned).Count(&stats.Panoramas).Error; err != nil {
		return nil, fmt.Errorf("failed to count panoramas: %w", err)
	}
	owned = s.db.Model(&models.Tour{}).Scopes(scopeTours(p)).Select("id")
	if err := s.db.Model(&models.Hotspot{}).Where("tour_id IN (?)", owned).Count(&stats.Hotspots).Error; err != nil {
		return nil, fmt.Errorf("failed to count hotspots: %w", err)
	}
	return stats, nil
}

// GetPublic returns a published tour with only its active panoramas and the
// hotspots placed on them.
func (s *TourService) GetPublic(id uuid.UUID) (*models.Tour, error) {
	tour, err := findTour(s.db, id)
	if err != nil {
		return nil, err
	}
	if !tour.IsPublished() {
		return nil, ErrTourNotFound
	}
	if err := s.loadChildren(s.db, tour, true); err != nil {
		return nil, err
	}
	return tour, nil
}

// ViewerConfig renders a published tour as a multi-scene viewer
// configuration keyed by panorama id.
func (s *TourService) ViewerConfig(id uuid.UUID) (*dto.ViewerConfig, error) {
	tour, err := s.GetPublic(id)
	if err != nil {
		return nil, err
	}
	return buildViewerConfig(tour), nil
}

func buildViewerConfig(tour *models.Tour) *dto.ViewerConfig {
	settings := tour.Settings.Data()
	cfg := &dto.ViewerConfig{
		Default: dto.ViewerDefault{
			SceneFadeDuration: 1000,
			AutoLoad:          true,
			Compass:           settings.Compass,
		},
		Scenes: make(map[string]dto.ViewerScene, len(tour.Panoramas)),
	}
	if settings.AutoRotate {
		cfg.Default.AutoRotate = -2
	}

	scenes := make(map[uuid.UUID]bool, len(tour.Panoramas))
	for _, pano := range tour.Panoramas {
		scenes[pano.ID] = true
	}

	byPanorama := make(map[uuid.UUID][]dto.ViewerHotspot)
	for i := range tour.Hotspots {
		h := &tour.Hotspots[i]
		vh := toViewerHotspot(h)
		if h.TargetPanoramaID != nil && !scenes[*h.TargetPanoramaID] {
			vh.SceneID = ""
		}
		byPanorama[h.PanoramaID] = append(byPanorama[h.PanoramaID], vh)
	}

	for _, pano := range tour.Panoramas {
		meta := pano.Metadata.Data()
		hotSpots := byPanorama[pano.ID]
		if hotSpots == nil {
			hotSpots = []dto.ViewerHotspot{}
		}
		cfg.Scenes[pano.ID.String()] = dto.ViewerScene{
			Title:        pano.Name,
			Type:         "equirectangular",
			Panorama:     pano.URL,
			HFOV:         meta.FOV,
			Yaw:          meta.InitialYaw,
			Pitch:        meta.InitialPitch,
			AutoLoad:     meta.AutoLoad,
			ShowZoomCtrl: meta.ShowZoomCtrl,
			HotSpots:     hotSpots,
		}
	}

	if start := settings.StartPanoramaID; start != nil && scenes[*start] {
		cfg.Default.FirstScene = start.String()
	} else if len(tour.Panoramas) > 0 {
		cfg.Default.FirstScene = tour.Panoramas[0].ID.String()
	}
	return cfg
}
