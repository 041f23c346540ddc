package users

import (
	"context"
	"strings"
	"time"

	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	"gorm.io/gorm"
)

// ListFilter narrows the user directory query.
type ListFilter struct {
	Search string
	Role   enums.Role
}

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByLogin retrieves the user matching the provided login exactly.
func (r *Repository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their integer id.
func (r *Repository) FindByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile overwrites the editable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id int, dto UpdateProfileDTO) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"login":       dto.Login,
			"first_name":  dto.FirstName,
			"last_name":   dto.LastName,
			"middle_name": dto.MiddleName,
			"police":      dto.Police,
		}).Error
}

// UpdateRole changes the user's role tag.
func (r *Repository) UpdateRole(ctx context.Context, id int, role enums.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("role", role).Error
}

// UpdatePhotoURL stores the public photo URL for the user.
func (r *Repository) UpdatePhotoURL(ctx context.Context, id int, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("photo_url", url).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// List returns users matching the filter, ordered by id. The search term
// matches any name part case-insensitively.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(middle_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var found []models.User
	if err := query.Order("id").Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// CreateAdmin inserts the admin satellite row for the user id.
func (r *Repository) CreateAdmin(ctx context.Context, userID int) (*models.Admin, error) {
	admin := &models.Admin{ID: userID}
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// FindAdminByUserID loads the admin record keyed by the user id.
func (r *Repository) FindAdminByUserID(ctx context.Context, userID int) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// ListAdminsByUserIDs loads admin records for the given user ids, keyed by id.
func (r *Repository) ListAdminsByUserIDs(ctx context.Context, userIDs []int) (map[int]models.Admin, error) {
	result := make(map[int]models.Admin, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var found []models.Admin
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&found).Error; err != nil {
		return nil, err
	}
	for _, admin := range found {
		result[admin.ID] = admin
	}
	return result, nil
}
