package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todoapi/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// Deleting a user cascades into the todo repository it was built with.
type MemoryUserRepository struct {
	users  map[uint]models.User
	byName map[string]uint
	nextID uint
	todos  TodoRepository
	mu     sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository(todos TodoRepository) *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[uint]models.User),
		byName: make(map[string]uint),
		nextID: 1,
		todos:  todos,
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[user.Name]; taken {
		return fmt.Errorf("failed to create user %s: %w", user.Name, ErrDuplicate)
	}

	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.users[user.ID] = *user
	r.byName[user.Name] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByName(_ context.Context, name string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("user with name %s not found: %w", name, ErrNotFound)
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %d not found: %w", id, ErrNotFound)
	}
	return &user, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user with ID %d not found for update: %w", user.ID, ErrNotFound)
	}
	if owner, taken := r.byName[user.Name]; taken && owner != user.ID {
		return fmt.Errorf("failed to update user %d: %w", user.ID, ErrDuplicate)
	}

	delete(r.byName, existing.Name)
	existing.Name = user.Name
	existing.Password = user.Password
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	r.users[user.ID] = existing
	r.byName[existing.Name] = user.ID
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	if r.todos != nil {
		if _, err := r.todos.DeleteByOwner(ctx, id); err != nil {
			return fmt.Errorf("failed to delete todos of user %d: %w", id, err)
		}
	}
	delete(r.users, id)
	delete(r.byName, user.Name)
	return nil
}
