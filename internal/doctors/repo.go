package doctors

import (
	"context"

	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes doctor and post persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a doctors repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPosts returns all known doctor posts ordered by name.
func (r *Repository) ListPosts(ctx context.Context) ([]models.DoctorPost, error) {
	var posts []models.DoctorPost
	if err := r.db.WithContext(ctx).Order("name").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FindPostByID loads a single doctor post.
func (r *Repository) FindPostByID(ctx context.Context, id int) (*models.DoctorPost, error) {
	var post models.DoctorPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Create inserts the doctor satellite row keyed by the user id.
func (r *Repository) Create(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

// FindByUserID loads the doctor record with its post preloaded.
func (r *Repository) FindByUserID(ctx context.Context, userID int) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.WithContext(ctx).Preload("Post").First(&doctor, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

// ListByUserIDs loads doctor records for the given user ids, keyed by id.
func (r *Repository) ListByUserIDs(ctx context.Context, userIDs []int) (map[int]models.Doctor, error) {
	result := make(map[int]models.Doctor, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var found []models.Doctor
	if err := r.db.WithContext(ctx).Preload("Post").Where("id IN ?", userIDs).Find(&found).Error; err != nil {
		return nil, err
	}
	for _, doctor := range found {
		result[doctor.ID] = doctor
	}
	return result, nil
}
