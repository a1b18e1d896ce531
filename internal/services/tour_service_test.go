package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateTourSeedsDefaults(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)

	tour := env.newTour(t, owner, "A")

	stored := env.reloadTour(t, tour.ID)
	assert.Equal(t, models.TourStatusDraft, stored.Status)
	assert.Equal(t, owner.UserID, stored.UserID)
	assert.Equal(t, "standard", stored.Settings.Data().Logo)
	assert.True(t, stored.Settings.Data().Compass)
	assert.Nil(t, stored.StartPanoramaID())
	assert.Empty(t, stored.Tags)
	assert.EqualValues(t, 0, stored.Views)
}

func TestCreateTourRejectsStartPanorama(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)

	_, err := env.tours.Create(owner, &dto.CreateTourRequest{
		Name:       "A",
		ObjectType: "house",
		Settings:   &dto.TourSettingsPatch{StartPanoramaID: ptr(uuid.NewString())},
	})

	var verr *validation.RequestValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPublishScenario(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	assert.Equal(t, models.TourStatusDraft, tour.Status)

	_, err := env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{Status: ptr(models.TourStatusPublished)})
	require.ErrorIs(t, err, ErrNoPanoramas)
	assert.Equal(t, models.TourStatusDraft, env.reloadTour(t, tour.ID).Status)

	pano := env.upload(t, owner, tour.ID, "Living room")
	assert.Equal(t, models.PanoramaStatusActive, pano.Status)
	require.NotNil(t, env.reloadTour(t, tour.ID).StartPanoramaID())
	assert.Equal(t, pano.ID, *env.reloadTour(t, tour.ID).StartPanoramaID())

	updated, err := env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{Status: ptr(models.TourStatusPublished)})
	require.NoError(t, err)
	assert.Equal(t, models.TourStatusPublished, updated.Status)
}

func TestPublishPinsStartToActivePanorama(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	p2 := env.upload(t, owner, tour.ID, "P2")

	// Draft tours may lose their start panorama entirely.
	_, err := env.panoramas.Update(owner, tour.ID, p1.ID, &dto.UpdatePanoramaRequest{Status: ptr(models.PanoramaStatusInactive)})
	require.NoError(t, err)
	_, err = env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{Settings: &dto.TourSettingsPatch{StartPanoramaID: ptr(p1.ID.String())}})
	require.NoError(t, err)

	env.publish(t, owner, tour.ID)

	start := env.reloadTour(t, tour.ID).StartPanoramaID()
	require.NotNil(t, start)
	assert.Equal(t, p2.ID, *start)
}

func TestUpdateTourMergesNestedRecords(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	pano := env.upload(t, owner, tour.ID, "P1")

	_, err := env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{
		Settings: &dto.TourSettingsPatch{AutoRotate: ptr(true)},
		MetaData: &dto.TourMetaDataPatch{Title: ptr("SEO title")},
	})
	require.NoError(t, err)

	_, err = env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{
		MetaData: &dto.TourMetaDataPatch{Keywords: &[]string{"loft"}},
	})
	require.NoError(t, err)

	stored := env.reloadTour(t, tour.ID)
	settings := stored.Settings.Data()
	assert.True(t, settings.AutoRotate)
	assert.Equal(t, "standard", settings.Logo)
	require.NotNil(t, settings.StartPanoramaID)
	assert.Equal(t, pano.ID, *settings.StartPanoramaID)
	assert.Equal(t, "SEO title", stored.MetaData.Data().Title)
	assert.Equal(t, []string{"loft"}, stored.MetaData.Data().Keywords)
}

func TestUpdateTourStartPanoramaValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	env.upload(t, owner, tour.ID, "P1")

	other := env.newTour(t, owner, "B")
	foreign := env.upload(t, owner, other.ID, "X")

	var verr *validation.RequestValidationError
	_, err := env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{
		Settings: &dto.TourSettingsPatch{StartPanoramaID: ptr(foreign.ID.String())},
	})
	require.ErrorAs(t, err, &verr)

	_, err = env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{
		Settings: &dto.TourSettingsPatch{StartPanoramaID: ptr("not-a-uuid")},
	})
	require.ErrorAs(t, err, &verr)

	_, err = env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{
		Settings: &dto.TourSettingsPatch{StartPanoramaID: ptr("")},
	})
	require.NoError(t, err)
	assert.Nil(t, env.reloadTour(t, tour.ID).StartPanoramaID())
}

func TestTourAccessRules(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	stranger := env.newUser(t, models.RoleUser)
	admin := env.newUser(t, models.RoleAdmin)
	tour := env.newTour(t, owner, "A")

	_, err := env.tours.Get(stranger, tour.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.tours.Get(admin, tour.ID)
	assert.NoError(t, err)

	_, err = env.tours.Get(owner, uuid.New())
	assert.ErrorIs(t, err, ErrTourNotFound)

	_, err = env.tours.Update(stranger, tour.ID, &dto.UpdateTourRequest{Name: ptr("hijack")})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.tours.Update(admin, tour.ID, &dto.UpdateTourRequest{Name: ptr("renamed")})
	assert.NoError(t, err)

	env.upload(t, owner, tour.ID, "P1")
	env.publish(t, owner, tour.ID)

	got, err := env.tours.Get(stranger, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Len(t, got.Panoramas, 1)

	assert.ErrorIs(t, env.tours.Delete(stranger, tour.ID), ErrAccessDenied)
}

func TestListTours(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	other := env.newUser(t, models.RoleUser)
	admin := env.newUser(t, models.RoleAdmin)

	env.newTour(t, owner, "Charlie loft")
	env.newTour(t, owner, "Alpha house")
	b := env.newTour(t, owner, "Bravo office")
	env.newTour(t, other, "Foreign")
	env.upload(t, owner, b.ID, "P1")

	resp, err := env.tours.List(owner, dto.TourListQuery{Limit: 2, SortField: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Pagination.TotalTours)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Equal(t, 1, resp.Pagination.CurrentPage)
	require.Len(t, resp.Tours, 2)
	assert.Equal(t, "Alpha house", resp.Tours[0].Name)
	assert.Equal(t, "Bravo office", resp.Tours[1].Name)
	require.Len(t, resp.Tours[1].Panoramas, 1)
	assert.Equal(t, "/api/uploads/"+resp.Tours[1].Panoramas[0].Filename, resp.Tours[1].Panoramas[0].URL)

	resp, err = env.tours.List(owner, dto.TourListQuery{Page: 2, Limit: 2, SortField: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, resp.Tours, 1)
	assert.Equal(t, "Charlie loft", resp.Tours[0].Name)

	resp, err = env.tours.List(owner, dto.TourListQuery{Search: "LOFT"})
	require.NoError(t, err)
	require.Len(t, resp.Tours, 1)
	assert.Equal(t, 12, resp.Pagination.Limit)

	resp, err = env.tours.List(owner, dto.TourListQuery{Status: models.TourStatusPublished})
	require.NoError(t, err)
	assert.Empty(t, resp.Tours)

	resp, err = env.tours.List(admin, dto.TourListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, resp.Pagination.TotalTours)
}

func TestDeleteTourCascades(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	p2 := env.upload(t, owner, tour.ID, "P2")
	_, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name: "go", PanoramaID: p1.ID.String(), TargetPanoramaID: ptr(p2.ID.String()),
	})
	require.NoError(t, err)

	require.NoError(t, env.tours.Delete(owner, tour.ID))

	var n int64
	env.db.Model(&models.Tour{}).Where("id = ?", tour.ID).Count(&n)
	assert.Zero(t, n)
	env.db.Model(&models.Panorama{}).Where("tour_id = ?", tour.ID).Count(&n)
	assert.Zero(t, n)
	env.db.Model(&models.Hotspot{}).Where("tour_id = ?", tour.ID).Count(&n)
	assert.Zero(t, n)
	assert.False(t, env.store.Exists(p1.Filename))
	assert.False(t, env.store.Exists(p2.Filename))
}

func TestDeleteTourToleratesMissingFile(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	pano := env.upload(t, owner, tour.ID, "P1")
	require.NoError(t, os.Remove(filepath.Join(env.store.Dir(), pano.Filename)))

	assert.NoError(t, env.tours.Delete(owner, tour.ID))
}

func TestDuplicateRemapsReferences(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	caller := env.newUser(t, models.RoleAdmin)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	p2 := env.upload(t, owner, tour.ID, "P2")
	h, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name: "to P2", PanoramaID: p1.ID.String(), TargetPanoramaID: ptr(p2.ID.String()),
	})
	require.NoError(t, err)
	env.publish(t, owner, tour.ID)
	_, err = env.tours.IncrementViews(tour.ID)
	require.NoError(t, err)

	clone, err := env.tours.Duplicate(caller, tour.ID)
	require.NoError(t, err)

	assert.NotEqual(t, tour.ID, clone.ID)
	assert.Equal(t, "A (copy)", clone.Name)
	assert.Equal(t, models.TourStatusDraft, clone.Status)
	assert.EqualValues(t, 0, clone.Views)
	assert.Equal(t, caller.UserID, clone.UserID)

	copies, err := orderedPanoramas(env.db, clone.ID)
	require.NoError(t, err)
	require.Len(t, copies, 2)
	q1, q2 := copies[0], copies[1]
	assert.NotEqual(t, p1.ID, q1.ID)
	assert.NotEqual(t, p2.ID, q2.ID)
	assert.Equal(t, "P1", q1.Name)
	assert.Equal(t, 0, q1.DisplayOrder)
	assert.Equal(t, 1, q2.DisplayOrder)
	assert.NotEqual(t, p1.Filename, q1.Filename)
	assert.True(t, env.store.Exists(q1.Filename))
	assert.True(t, env.store.Exists(p1.Filename))

	var hotspots []models.Hotspot
	require.NoError(t, env.db.Where("tour_id = ?", clone.ID).Find(&hotspots).Error)
	require.Len(t, hotspots, 1)
	assert.NotEqual(t, h.ID, hotspots[0].ID)
	assert.Equal(t, q1.ID, hotspots[0].PanoramaID)
	require.NotNil(t, hotspots[0].TargetPanoramaID)
	assert.Equal(t, q2.ID, *hotspots[0].TargetPanoramaID)

	start := env.reloadTour(t, clone.ID).StartPanoramaID()
	require.NotNil(t, start)
	assert.Equal(t, q1.ID, *start)

	// The source is untouched.
	src := env.reloadTour(t, tour.ID)
	assert.Equal(t, models.TourStatusPublished, src.Status)
	assert.Equal(t, p1.ID, *src.StartPanoramaID())
}

func TestDuplicateStampsNewRows(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	_, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{Name: "info", PanoramaID: p1.ID.String()})
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, env.db.Model(&models.Panorama{}).Where("tour_id = ?", tour.ID).
		UpdateColumns(map[string]any{"created_at": past, "updated_at": past}).Error)
	require.NoError(t, env.db.Model(&models.Hotspot{}).Where("tour_id = ?", tour.ID).
		UpdateColumns(map[string]any{"created_at": past, "updated_at": past}).Error)

	clone, err := env.tours.Duplicate(owner, tour.ID)
	require.NoError(t, err)

	var panorama models.Panorama
	require.NoError(t, env.db.First(&panorama, "tour_id = ?", clone.ID).Error)
	assert.True(t, panorama.CreatedAt.After(past.Add(time.Hour)))
	assert.True(t, panorama.UpdatedAt.After(past.Add(time.Hour)))

	var hotspot models.Hotspot
	require.NoError(t, env.db.First(&hotspot, "tour_id = ?", clone.ID).Error)
	assert.True(t, hotspot.CreatedAt.After(past.Add(time.Hour)))
	assert.True(t, hotspot.UpdatedAt.After(past.Add(time.Hour)))
}

func TestDuplicateDeniedForStranger(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	stranger := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")

	_, err := env.tours.Duplicate(stranger, tour.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCopyNameFitsLimit(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "x"
	}
	name := copyName(long)
	assert.Len(t, []rune(name), 100)
	assert.Contains(t, name, " (copy)")
}

func TestIncrementViews(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")

	_, err := env.tours.IncrementViews(tour.ID)
	assert.ErrorIs(t, err, ErrTourNotFound)

	env.upload(t, owner, tour.ID, "P1")
	env.publish(t, owner, tour.ID)

	views, err := env.tours.IncrementViews(tour.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, views)
	views, err = env.tours.IncrementViews(tour.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, views)
}

func TestUpdateTourKeepsConcurrentViews(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")

	// Bump views between Update's read and its write.
	fired := false
	require.NoError(t, env.db.Callback().Update().Before("gorm:update").Register("test:bump_views", func(db *gorm.DB) {
		if fired || db.Statement.Schema == nil || db.Statement.Schema.Table != "tours" {
			return
		}
		fired = true
		db.Session(&gorm.Session{NewDB: true}).Exec("UPDATE tours SET views = views + 5 WHERE id = ?", tour.ID)
	}))

	updated, err := env.tours.Update(owner, tour.ID, &dto.UpdateTourRequest{Name: ptr("Renamed")})
	require.NoError(t, err)
	require.True(t, fired)
	assert.EqualValues(t, 5, updated.Views)

	reloaded := env.reloadTour(t, tour.ID)
	assert.Equal(t, "Renamed", reloaded.Name)
	assert.EqualValues(t, 5, reloaded.Views)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	other := env.newUser(t, models.RoleUser)
	admin := env.newUser(t, models.RoleAdmin)

	a := env.newTour(t, owner, "A")
	b := env.newTour(t, owner, "B")
	env.newTour(t, other, "C")
	pa := env.upload(t, owner, a.ID, "P1")
	pb := env.upload(t, owner, a.ID, "P2")
	_, err := env.hotspots.Create(owner, a.ID, &dto.CreateHotspotRequest{Name: "h", PanoramaID: pa.ID.String(), TargetPanoramaID: ptr(pb.ID.String())})
	require.NoError(t, err)
	env.publish(t, owner, a.ID)
	_, err = env.tours.Update(owner, b.ID, &dto.UpdateTourRequest{Status: ptr(models.TourStatusReady)})
	require.NoError(t, err)
	_, err = env.tours.IncrementViews(a.ID)
	require.NoError(t, err)

	stats, err := env.tours.Stats(owner)
	require.NoError(t, err)
	assert.Equal(t, dto.TourStats{Total: 2, Draft: 0, Ready: 1, Published: 1, Panoramas: 2, Hotspots: 1, Views: 1}, *stats)

	stats, err = env.tours.Stats(admin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Draft)
}

func TestGetPublicAndViewerConfig(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "Hall")
	p2 := env.upload(t, owner, tour.ID, "Kitchen")
	p3 := env.upload(t, owner, tour.ID, "Attic")

	_, err := env.tours.GetPublic(tour.ID)
	assert.ErrorIs(t, err, ErrTourNotFound)

	_, err = env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{Name: "to kitchen", PanoramaID: p1.ID.String(), TargetPanoramaID: ptr(p2.ID.String())})
	require.NoError(t, err)
	_, err = env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{Name: "to attic", PanoramaID: p1.ID.String(), TargetPanoramaID: ptr(p3.ID.String())})
	require.NoError(t, err)
	_, err = env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{Name: "attic note", PanoramaID: p3.ID.String()})
	require.NoError(t, err)

	_, err = env.panoramas.Update(owner, tour.ID, p3.ID, &dto.UpdatePanoramaRequest{Status: ptr(models.PanoramaStatusInactive)})
	require.NoError(t, err)
	env.publish(t, owner, tour.ID)

	public, err := env.tours.GetPublic(tour.ID)
	require.NoError(t, err)
	require.Len(t, public.Panoramas, 2)
	assert.Len(t, public.Hotspots, 2, "hotspots on inactive panoramas are hidden")

	cfg, err := env.tours.ViewerConfig(tour.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID.String(), cfg.Default.FirstScene)
	require.Len(t, cfg.Scenes, 2)

	hall := cfg.Scenes[p1.ID.String()]
	assert.Equal(t, "Hall", hall.Title)
	assert.Equal(t, "/api/uploads/"+p1.Filename, hall.Panorama)
	assert.EqualValues(t, 100, hall.HFOV)
	require.Len(t, hall.HotSpots, 2)
	byText := map[string]dto.ViewerHotspot{}
	for _, h := range hall.HotSpots {
		byText[h.Text] = h
	}
	assert.Equal(t, p2.ID.String(), byText["to kitchen"].SceneID)
	assert.Empty(t, byText["to attic"].SceneID, "links to hidden scenes are dropped")
	assert.NotNil(t, cfg.Scenes[p2.ID.String()].HotSpots)
}
