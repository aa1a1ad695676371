package services

import (
	"context"
	"errors"
	"fmt"

	"todoapi/internal/apperr"
	"todoapi/internal/logging"
	"todoapi/internal/models"
	"todoapi/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, login and profile changes. Passwords are
// hashed with bcrypt, which salts every hash individually.
type UserService struct {
	repo      repositories.UserRepository
	events    EventPublisher
	logger    logging.Logger
	cost      int
	dummyHash []byte
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(repo repositories.UserRepository, events EventPublisher, logger logging.Logger) *UserService {
	s := &UserService{
		repo:   repo,
		events: events,
		logger: logger,
	}
	s.SetHashCost(bcrypt.DefaultCost)
	return s
}

// SetHashCost changes the bcrypt cost. Tests lower it to bcrypt.MinCost.
func (s *UserService) SetHashCost(cost int) {
	s.cost = cost
	// Compared against when the name is unknown so that both login failures
	// take about the same time.
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password-0"), cost)
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a user. It fails with AlreadyExists when the name is
// taken and never overwrites the existing account.
func (s *UserService) Register(ctx context.Context, in models.CreateUserInput) (*models.User, error) {
	if _, err := s.repo.GetByName(ctx, in.Name); err == nil {
		return nil, apperr.AlreadyExists(in.Name)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: in.Name, Password: hashed}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.AlreadyExists(in.Name)
		}
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	publish(ctx, s.events, s.logger, EventUserCreated, map[string]any{"user_id": user.ID})
	return user, nil
}

// Authenticate returns the user when name and password match. Unknown names
// and wrong passwords produce the same LoginFailed error.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (*models.User, error) {
	user, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, apperr.LoginFailed()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.LoginFailed()
	}
	return user, nil
}

// Find returns the user with id.
func (s *UserService) Find(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.UserNotFound(id)
		}
		return nil, err
	}
	return user, nil
}

// Update applies the supplied fields. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id uint, in models.UpdateUserInput) (*models.User, error) {
	user, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Password != nil {
		hashed, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apperr.AlreadyExists(user.Name)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperr.UserNotFound(id)
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the user together with all of its todos.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.UserNotFound(id)
		}
		return err
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	publish(ctx, s.events, s.logger, EventUserDeleted, map[string]any{"user_id": id})
	return nil
}
