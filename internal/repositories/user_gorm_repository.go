package repositories

import (
	"context"
	"fmt"

	"todoapi/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts the user and fills in its ID.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Name, translate(err))
	}
	return nil
}

// GetByName retrieves a user by name.
func (r *GORMUserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by name %s: %w", name, translate(err))
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, translate(err))
	}
	return &user, nil
}

// Update writes name and password of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Select("name", "password", "updated_at").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

// Delete removes the user's todos and then the user in one transaction. The
// foreign key also cascades, but the explicit delete keeps the behaviour
// independent of whether the driver enforces foreign keys.
func (r *GORMUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&models.Todo{}).Error; err != nil {
			return fmt.Errorf("failed to delete todos of user %d: %w", id, err)
		}

		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user with ID %d not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}
