package repositories

import (
	"context"

	"todoapi/internal/models"
)

// TodoRepository defines owner-scoped data access for todos. Every lookup
// matches on both the todo ID and the owner ID, so a todo owned by someone
// else is indistinguishable from a missing one.
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByOwner(ctx context.Context, id, ownerID uint) (*models.Todo, error)
	// ListByOwner returns the owner's todos ordered by ID ascending.
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Todo, error)
	// Update writes title, description and completed of todo, matching on
	// todo.ID and todo.OwnerID.
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, id, ownerID uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) (int64, error)
}
