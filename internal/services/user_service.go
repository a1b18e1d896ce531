package services

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService backs the admin user management endpoints.
type UserService struct {
	db     *gorm.DB
	assets *Assets
}

func NewUserService(db *gorm.DB, assets *Assets) *UserService {
	return &UserService{db: db, assets: assets}
}

func (s *UserService) List(q dto.UserListQuery) (*dto.UserListResponse, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := func(db *gorm.DB) *gorm.DB {
		if q.Search == "" {
			return db
		}
		like := "%" + strings.ToLower(q.Search) + "%"
		return db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}

	var total int64
	if err := s.db.Model(&models.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := s.db.Scopes(filter).
		Order("created_at DESC, id ASC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := &dto.UserListResponse{
		Users: make([]dto.UserResponse, 0, len(users)),
		Pagination: dto.UserPagination{
			TotalUsers:  total,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
			Limit:       limit,
		},
	}
	for i := range users {
		resp.Users = append(resp.Users, dto.NewUserResponse(&users[i]))
	}
	return resp, nil
}

func (s *UserService) Update(admin Principal, id uuid.UUID, req *dto.AdminUpdateUserRequest) (*models.User, error) {
	if id == admin.UserID {
		if (req.Role != nil && *req.Role != models.RoleAdmin) || (req.IsActive != nil && !*req.IsActive) {
			return nil, ErrCannotModifySelf
		}
	}

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return ErrUserNotFound
		}

		updates := map[string]interface{}{}
		if req.Role != nil {
			updates["role"] = *req.Role
			user.Role = *req.Role
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
			user.IsActive = *req.IsActive
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		// Deactivated users lose their sessions.
		if req.IsActive != nil && !*req.IsActive {
			if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", id).Update("revoked", true).Error; err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user updated by admin", "user_id", id.String(), "admin_id", admin.UserID.String())
	return &user, nil
}

func (s *UserService) Delete(admin Principal, id uuid.UUID) error {
	if id == admin.UserID {
		return ErrCannotModifySelf
	}

	var filenames []string
	var tours int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if n == 0 {
			return ErrUserNotFound
		}
		var err error
		filenames, tours, err = deleteUserTx(tx, id)
		return err
	})
	if err != nil {
		return err
	}

	metrics.ToursDeleted.Add(float64(tours))
	s.assets.removeFiles(filenames)
	slog.Info("user deleted by admin", "user_id", id.String(), "admin_id", admin.UserID.String(), "tours", tours)
	return nil
}

// normalizePage applies the listing defaults: page 1, 12 per page, at most
// 100.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 12
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
