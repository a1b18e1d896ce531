package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHotspotTypeDefaults(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	p2 := env.upload(t, owner, tour.ID, "P2")

	scene, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name:             " Door ",
		PanoramaID:       p1.ID.String(),
		TargetPanoramaID: ptr(p2.ID.String()),
		Position:         &dto.HotspotPositionPatch{Yaw: ptr(30.0), Pitch: ptr(-5.0)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.HotspotTypeScene, scene.Type)
	assert.Equal(t, "Door", scene.Name)
	require.NotNil(t, scene.TargetPanoramaID)
	assert.Equal(t, p2.ID, *scene.TargetPanoramaID)
	assert.EqualValues(t, 30, scene.Position.Data().Yaw)
	assert.Equal(t, models.DefaultHotspotParameters(), scene.Parameters.Data())

	info, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name:       "Note",
		PanoramaID: p1.ID.String(),
		Content:    ptr("<b>fireplace</b>"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.HotspotTypeInfo, info.Type)
	assert.Nil(t, info.TargetPanoramaID)
	assert.Equal(t, "<b>fireplace</b>", info.Content)

	_, err = env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name:       "Broken",
		PanoramaID: p1.ID.String(),
		Type:       ptr(models.HotspotTypeScene),
	})
	assert.ErrorIs(t, err, ErrTargetPanoramaRequired)
}

func TestCreateHotspotRejectsForeignPanoramas(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	other := env.newTour(t, owner, "B")
	foreign := env.upload(t, owner, other.ID, "X")

	_, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name:             "Cross tour",
		PanoramaID:       p1.ID.String(),
		TargetPanoramaID: ptr(foreign.ID.String()),
	})
	assert.ErrorIs(t, err, ErrTargetPanoramaNotFound)

	_, err = env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name:       "Wrong source",
		PanoramaID: foreign.ID.String(),
	})
	assert.ErrorIs(t, err, ErrPanoramaNotFound)

	stranger := env.newUser(t, models.RoleUser)
	_, err = env.hotspots.Create(stranger, tour.ID, &dto.CreateHotspotRequest{
		Name:       "Intruder",
		PanoramaID: p1.ID.String(),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	var n int64
	env.db.Model(&models.Hotspot{}).Count(&n)
	assert.Zero(t, n)
}

func TestUpdateHotspot(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	p2 := env.upload(t, owner, tour.ID, "P2")

	h, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name:             "Door",
		PanoramaID:       p1.ID.String(),
		TargetPanoramaID: ptr(p2.ID.String()),
	})
	require.NoError(t, err)

	updated, err := env.hotspots.Update(owner, tour.ID, h.ID, &dto.UpdateHotspotRequest{
		Parameters: &dto.HotspotParametersPatch{Delay: ptr(500)},
		Position:   &dto.HotspotPositionPatch{Pitch: ptr(12.5)},
	})
	require.NoError(t, err)
	params := updated.Parameters.Data()
	assert.Equal(t, 500, params.Delay)
	assert.True(t, params.ShowTooltip)
	assert.True(t, params.Clickable)
	assert.EqualValues(t, 12.5, updated.Position.Data().Pitch)

	// Clearing the target of a scene hotspot is refused.
	_, err = env.hotspots.Update(owner, tour.ID, h.ID, &dto.UpdateHotspotRequest{TargetPanoramaID: ptr("")})
	assert.ErrorIs(t, err, ErrTargetPanoramaRequired)

	// Turning it into an info hotspot first allows it.
	updated, err = env.hotspots.Update(owner, tour.ID, h.ID, &dto.UpdateHotspotRequest{
		Type:             ptr(models.HotspotTypeInfo),
		TargetPanoramaID: ptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.TargetPanoramaID)

	_, err = env.hotspots.Update(owner, tour.ID, h.ID, &dto.UpdateHotspotRequest{TargetPanoramaID: ptr("not-a-uuid")})
	assert.ErrorIs(t, err, ErrTargetPanoramaNotFound)

	_, err = env.hotspots.Update(owner, tour.ID, uuid.New(), &dto.UpdateHotspotRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrHotspotNotFound)
}

func TestListHotspots(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")
	p2 := env.upload(t, owner, tour.ID, "P2")

	door, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{
		Name:             "Door",
		PanoramaID:       p1.ID.String(),
		TargetPanoramaID: ptr(p2.ID.String()),
		Position:         &dto.HotspotPositionPatch{Yaw: ptr(90.0), Pitch: ptr(1.0)},
		CSSClass:         ptr("door"),
	})
	require.NoError(t, err)
	_, err = env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{Name: "Back", PanoramaID: p2.ID.String(), TargetPanoramaID: ptr(p1.ID.String())})
	require.NoError(t, err)

	all, err := env.hotspots.ListByTour(owner, tour.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	markers, err := env.hotspots.ListByPanorama(owner, tour.ID, p1.ID)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, dto.ViewerHotspot{
		ID:       door.ID.String(),
		Yaw:      90,
		Pitch:    1,
		Type:     models.HotspotTypeScene,
		Text:     "Door",
		SceneID:  p2.ID.String(),
		CSSClass: "door",
	}, markers[0])

	_, err = env.hotspots.ListByPanorama(owner, tour.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPanoramaNotFound)

	stranger := env.newUser(t, models.RoleUser)
	_, err = env.hotspots.ListByTour(stranger, tour.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDeleteHotspot(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newUser(t, models.RoleUser)
	tour := env.newTour(t, owner, "A")
	p1 := env.upload(t, owner, tour.ID, "P1")

	h, err := env.hotspots.Create(owner, tour.ID, &dto.CreateHotspotRequest{Name: "Note", PanoramaID: p1.ID.String()})
	require.NoError(t, err)

	require.NoError(t, env.hotspots.Delete(owner, tour.ID, h.ID))
	assert.ErrorIs(t, env.hotspots.Delete(owner, tour.ID, h.ID), ErrHotspotNotFound)
}
