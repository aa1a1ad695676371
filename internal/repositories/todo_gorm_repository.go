package repositories

import (
	"context"
	"fmt"

	"todoapi/internal/models"

	"gorm.io/gorm"
)

// GORMTodoRepository is a GORM implementation of TodoRepository.
type GORMTodoRepository struct {
	db *gorm.DB
}

// NewGORMTodoRepository creates a new instance of GORMTodoRepository.
func NewGORMTodoRepository(db *gorm.DB) *GORMTodoRepository {
	return &GORMTodoRepository{
		db: db,
	}
}

func (r *GORMTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("failed to create todo for owner %d: %w", todo.OwnerID, translate(err))
	}
	return nil
}

func (r *GORMTodoRepository) GetByOwner(ctx context.Context, id, ownerID uint) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.WithContext(ctx).First(&todo, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, fmt.Errorf("failed to get todo %d: %w", id, translate(err))
	}
	return &todo, nil
}

func (r *GORMTodoRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Todo, error) {
	todos := []models.Todo{}
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos of owner %d: %w", ownerID, err)
	}
	return todos, nil
}

func (r *GORMTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	res := r.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ? AND owner_id = ?", todo.ID, todo.OwnerID).
		Select("title", "description", "completed", "updated_at").
		Updates(todo)
	if res.Error != nil {
		return fmt.Errorf("failed to update todo %d: %w", todo.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("todo with ID %d not found for update: %w", todo.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMTodoRepository) Delete(ctx context.Context, id, ownerID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Todo{}, "id = ? AND owner_id = ?", id, ownerID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete todo %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("todo with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMTodoRepository) DeleteByOwner(ctx context.Context, ownerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Todo{}, "owner_id = ?", ownerID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete todos of owner %d: %w", ownerID, res.Error)
	}
	return res.RowsAffected, nil
}
