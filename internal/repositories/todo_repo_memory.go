package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"todoapi/internal/models"
)

// MemoryTodoRepository is an in-memory implementation of TodoRepository.
// Owners passed to DeleteByOwner are retired: later Create calls for them
// fail with ErrNotFound, like the foreign key does for the GORM repository.
// Memory user IDs are never reused, so a retired owner never comes back.
type MemoryTodoRepository struct {
	todos   map[uint]models.Todo
	retired map[uint]struct{}
	nextID  uint
	mu      sync.RWMutex
}

// NewMemoryTodoRepository creates a new instance of MemoryTodoRepository.
func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{
		todos:   make(map[uint]models.Todo),
		retired: make(map[uint]struct{}),
		nextID:  1,
	}
}

func cloneTodo(t models.Todo) models.Todo {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}

func (r *MemoryTodoRepository) Create(_ context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, gone := r.retired[todo.OwnerID]; gone {
		return fmt.Errorf("owner %d of todo not found: %w", todo.OwnerID, ErrNotFound)
	}

	now := time.Now()
	todo.ID = r.nextID
	todo.CreatedAt = now
	todo.UpdatedAt = now
	r.nextID++
	r.todos[todo.ID] = cloneTodo(*todo)
	return nil
}

func (r *MemoryTodoRepository) GetByOwner(_ context.Context, id, ownerID uint) (*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todo, ok := r.todos[id]
	if !ok || todo.OwnerID != ownerID {
		return nil, fmt.Errorf("todo with ID %d not found: %w", id, ErrNotFound)
	}
	todo = cloneTodo(todo)
	return &todo, nil
}

func (r *MemoryTodoRepository) ListByOwner(_ context.Context, ownerID uint) ([]models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := []models.Todo{}
	for _, t := range r.todos {
		if t.OwnerID == ownerID {
			todos = append(todos, cloneTodo(t))
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })
	return todos, nil
}

func (r *MemoryTodoRepository) Update(_ context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.todos[todo.ID]
	if !ok || existing.OwnerID != todo.OwnerID {
		return fmt.Errorf("todo with ID %d not found for update: %w", todo.ID, ErrNotFound)
	}
	existing.Title = todo.Title
	existing.Description = todo.Description
	existing.Completed = todo.Completed
	existing.UpdatedAt = time.Now()
	todo.UpdatedAt = existing.UpdatedAt
	r.todos[todo.ID] = cloneTodo(existing)
	return nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, id, ownerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.todos[id]
	if !ok || todo.OwnerID != ownerID {
		return fmt.Errorf("todo with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.todos, id)
	return nil
}

func (r *MemoryTodoRepository) DeleteByOwner(_ context.Context, ownerID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.retired[ownerID] = struct{}{}

	var n int64
	for id, t := range r.todos {
		if t.OwnerID == ownerID {
			delete(r.todos, id)
			n++
		}
	}
	return n, nil
}
