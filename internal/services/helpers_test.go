package services

import (
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	store     *storage.LocalStore
	assets    *Assets
	tokens    *TokenService
	auth      *AuthService
	users     *UserService
	tours     *TourService
	panoramas *PanoramaService
	hotspots  *HotspotService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	upload := config.UploadConfig{
		Dir:          store.Dir(),
		MaxFileSize:  1 << 20,
		AllowedTypes: []string{"jpeg", "jpg", "png", "webp"},
		PublicPath:   "/api/uploads",
	}
	assets := NewAssets(store, upload.PublicPath)
	tokens := NewTokenService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})

	return &testEnv{
		db:        db,
		store:     store,
		assets:    assets,
		tokens:    tokens,
		auth:      NewAuthService(db, tokens, assets),
		users:     NewUserService(db, assets),
		tours:     NewTourService(db, assets),
		panoramas: NewPanoramaService(db, assets, upload),
		hotspots:  NewHotspotService(db),
	}
}

func (e *testEnv) newUser(t *testing.T, role string) Principal {
	t.Helper()
	u := models.User{
		Name:         "User " + role,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(&u).Error)
	return Principal{UserID: u.ID, Role: u.Role}
}

func (e *testEnv) newTour(t *testing.T, p Principal, name string) *models.Tour {
	t.Helper()
	tour, err := e.tours.Create(p, &dto.CreateTourRequest{Name: name, ObjectType: "apartment"})
	require.NoError(t, err)
	return tour
}

func (e *testEnv) upload(t *testing.T, p Principal, tourID uuid.UUID, name string) *models.Panorama {
	t.Helper()
	body := "fake image bytes for " + name
	pano, err := e.panoramas.Upload(p, tourID, UploadInput{
		Name:             name,
		OriginalFilename: name + ".jpg",
		ContentType:      "image/jpeg",
		Size:             int64(len(body)),
		Body:             strings.NewReader(body),
	})
	require.NoError(t, err)
	return pano
}

func (e *testEnv) reloadTour(t *testing.T, id uuid.UUID) *models.Tour {
	t.Helper()
	var tour models.Tour
	require.NoError(t, e.db.First(&tour, "id = ?", id).Error)
	return &tour
}

func (e *testEnv) reloadPanorama(t *testing.T, id uuid.UUID) *models.Panorama {
	t.Helper()
	var pano models.Panorama
	require.NoError(t, e.db.First(&pano, "id = ?", id).Error)
	return &pano
}

func (e *testEnv) publish(t *testing.T, p Principal, tourID uuid.UUID) {
	t.Helper()
	_, err := e.tours.Update(p, tourID, &dto.UpdateTourRequest{Status: ptr(models.TourStatusPublished)})
	require.NoError(t, err)
}

func (e *testEnv) displayOrders(t *testing.T, tourID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	ps, err := orderedPanoramas(e.db, tourID)
	require.NoError(t, err)
	out := make(map[uuid.UUID]int, len(ps))
	for _, p := range ps {
		out[p.ID] = p.DisplayOrder
	}
	return out
}

// requireDense asserts display orders are exactly 0..N-1.
func requireDense(t *testing.T, orders map[uuid.UUID]int) {
	t.Helper()
	seen := make([]bool, len(orders))
	for id, o := range orders {
		require.True(t, o >= 0 && o < len(orders), "panorama %s has order %d", id, o)
		require.False(t, seen[o], "duplicate order %d", o)
		seen[o] = true
	}
}

func ptr[T any](v T) *T {
	return &v
}
