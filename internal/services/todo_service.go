package services

import (
	"context"
	"errors"

	"todoapi/internal/apperr"
	"todoapi/internal/logging"
	"todoapi/internal/models"
	"todoapi/internal/repositories"
)

// TodoService handles business logic for todos. Every operation takes the
// authenticated owner's ID and only ever sees that owner's todos; a todo of
// another user is reported as not found.
type TodoService struct {
	todos  repositories.TodoRepository
	users  repositories.UserRepository
	events EventPublisher
	logger logging.Logger
}

// NewTodoService creates a new TodoService. events may be nil.
func NewTodoService(todos repositories.TodoRepository, users repositories.UserRepository, events EventPublisher, logger logging.Logger) *TodoService {
	return &TodoService{
		todos:  todos,
		users:  users,
		events: events,
		logger: logger,
	}
}

func todoEvent(todo *models.Todo) map[string]any {
	return map[string]any{"todo_id": todo.ID, "owner_id": todo.OwnerID}
}

func notFound(err error, id uint) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.TodoNotFound(id)
	}
	return err
}

// Create stores a new todo owned by ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID uint, in models.CreateTodoInput) (*models.Todo, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.UserNotFound(ownerID)
		}
		return nil, err
	}

	todo := &models.Todo{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		OwnerID:     ownerID,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// owner removed between the check and the insert
			return nil, apperr.UserNotFound(ownerID)
		}
		return nil, err
	}

	publish(ctx, s.events, s.logger, EventTodoCreated, todoEvent(todo))
	return todo, nil
}

// Get returns todo id if it belongs to ownerID.
func (s *TodoService) Get(ctx context.Context, id, ownerID uint) (*models.Todo, error) {
	todo, err := s.todos.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return nil, notFound(err, id)
	}
	return todo, nil
}

// List returns every todo of ownerID ordered by ID.
func (s *TodoService) List(ctx context.Context, ownerID uint) ([]models.Todo, error) {
	return s.todos.ListByOwner(ctx, ownerID)
}

// Update changes only the supplied fields of todo id. A supplied blank
// description clears it.
func (s *TodoService) Update(ctx context.Context, id, ownerID uint, in models.UpdateTodoInput) (*models.Todo, error) {
	todo, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		todo.Title = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			todo.Description = nil
		} else {
			d := *in.Description
			todo.Description = &d
		}
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}

	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, notFound(err, id)
	}

	publish(ctx, s.events, s.logger, EventTodoUpdated, todoEvent(todo))
	return todo, nil
}

// Delete removes todo id if it belongs to ownerID.
func (s *TodoService) Delete(ctx context.Context, id, ownerID uint) error {
	if err := s.todos.Delete(ctx, id, ownerID); err != nil {
		return notFound(err, id)
	}

	publish(ctx, s.events, s.logger, EventTodoDeleted, map[string]any{"todo_id": id, "owner_id": ownerID})
	return nil
}
